package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"

	"github.com/openadmin/adminkit/schema"
)

const maxProblemBody = 1 << 20

// classifyTransportError maps a failure with no response received onto the
// error taxonomy.
func classifyTransportError(err error) *schema.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return schema.NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return schema.NewTimeoutError(err)
	}
	return schema.NewNetworkError(err)
}

// classifyResponse maps a >=400 response onto the error taxonomy, consuming
// the body.
func classifyResponse(resp *http.Response) *schema.Error {
	problem := decodeProblem(resp)
	status := resp.StatusCode
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &schema.Error{Kind: schema.KindAuth, Status: status, Problem: problem}
	case status == http.StatusUnprocessableEntity:
		return &schema.Error{Kind: schema.KindValidation, Status: status, Problem: problem}
	case status == http.StatusTooManyRequests:
		return &schema.Error{
			Kind:       schema.KindRateLimit,
			Status:     status,
			Problem:    problem,
			RetryAfter: parseRetryAfter(resp.Header),
		}
	case status >= http.StatusInternalServerError:
		return &schema.Error{Kind: schema.KindServer, Status: status, Problem: problem}
	}
	return &schema.Error{Kind: schema.KindClient, Status: status, Problem: problem}
}

// decodeProblem reads an RFC 7807 body; anything unparseable degrades to a
// synthesized problem with the canonical status title.
func decodeProblem(resp *http.Response) *schema.ProblemDetails {
	fallback := schema.NewProblem(resp.StatusCode, "")
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProblemBody))
	if err != nil || len(data) == 0 {
		return fallback
	}
	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if contentType != schema.ContentTypeProblem && !strings.HasSuffix(contentType, "json") {
		return fallback
	}
	var problem schema.ProblemDetails
	if err := json.Unmarshal(data, &problem); err != nil {
		return fallback
	}
	if problem.Status == 0 {
		problem.Status = resp.StatusCode
	}
	if problem.Title == "" {
		problem.Title = schema.StatusTitle(problem.Status)
	}
	return &problem
}
