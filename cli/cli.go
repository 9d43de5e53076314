// Package cli implements the adminctl command line surface on top of the
// adminkit client.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"syscall"

	"github.com/jessevdk/go-flags"
	"golang.org/x/term"

	"github.com/openadmin/adminkit"
	"github.com/openadmin/adminkit/schema"
)

// Options is the adminctl flag surface; the embedded client options can also
// be loaded from a YAML config file.
type Options struct {
	ConfigURL string `short:"f" long:"config-file" description:"yaml client options url"`
	Username  string `short:"U" long:"username" description:"login username"`

	adminkit.ClientOptions
	Args struct {
		Command    string `positional-arg-name:"command" description:"login | logout | whoami | get"`
		EntityType string `positional-arg-name:"entityType"`
		ID         string `positional-arg-name:"id"`
	} `positional-args:"yes"`
}

func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	ctx := context.Background()
	clientOptions := &options.ClientOptions
	if options.ConfigURL != "" {
		loaded, err := adminkit.LoadOptions(ctx, options.ConfigURL)
		if err != nil {
			return err
		}
		if clientOptions.BaseURL != "" {
			loaded.BaseURL = clientOptions.BaseURL
		}
		clientOptions = loaded
	}
	cli, err := adminkit.NewClient(ctx, clientOptions)
	if err != nil {
		return err
	}
	defer cli.Close()

	switch options.Args.Command {
	case "login":
		password, err := readPassword()
		if err != nil {
			return err
		}
		cred, err := cli.Login(ctx, &schema.LoginRequest{Username: options.Username, Password: password})
		if err != nil {
			return err
		}
		fmt.Printf("logged in, session expires at %v\n", cred.SessionExpiresAt)
		return nil
	case "logout":
		return cli.Logout(ctx)
	case "whoami":
		info, err := cli.Auth.WhoAmI(ctx)
		if err != nil {
			return err
		}
		return printJSON(info)
	case "get":
		if options.Args.EntityType == "" {
			return fmt.Errorf("entityType is required for get")
		}
		if options.Args.ID != "" {
			entity, err := cli.Entities.Get(ctx, options.Args.EntityType, options.Args.ID)
			if err != nil {
				return err
			}
			return printJSON(entity)
		}
		list, err := cli.Entities.List(ctx, options.Args.EntityType, "")
		if err != nil {
			return err
		}
		return printJSON(list)
	}
	return fmt.Errorf("unsupported command: %q", options.Args.Command)
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "password: ")
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printJSON(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
