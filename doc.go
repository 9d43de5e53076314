// Package adminkit provides high-level helpers for working with the admin
// API.
//
// The package glues the wire types defined in the schema sub-package with the
// HTTP transport pipeline, the credential store and the session monitor, and
// exposes one primary entry-point: NewClient, which returns a fully
// configured session coordinator with its resource sub-clients.
//
// The constructor accepts an option structure that can be populated from CLI
// flags or YAML configuration files, making it straightforward to spin up a
// client with file-persisted sessions, OAuth2 password-grant login or API-key
// machine flows.
//
// Example:
//
//	options := &adminkit.ClientOptions{BaseURL: "https://admin.example.com"}
//	cli, _ := adminkit.NewClient(context.Background(), options)
//	cred, _ := cli.Login(ctx, &schema.LoginRequest{Username: u, Password: p})
package adminkit
