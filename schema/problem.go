package schema

import "net/http"

// ContentTypeProblem is the RFC 7807 media type used for error bodies.
const ContentTypeProblem = "application/problem+json"

// ProblemDetails is the RFC 7807 error body returned by the admin API.
// Stack is only populated by non-production servers.
type ProblemDetails struct {
	Type      string       `json:"type,omitempty"`
	Title     string       `json:"title"`
	Status    int          `json:"status"`
	Detail    string       `json:"detail,omitempty"`
	Instance  string       `json:"instance,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
	Errors    []FieldError `json:"errors,omitempty"`
	Stack     string       `json:"stack,omitempty"`
}

// FieldError carries a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var statusTitles = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusMethodNotAllowed:    "Method Not Allowed",
	http.StatusConflict:            "Conflict",
	http.StatusUnprocessableEntity: "Unprocessable Entity",
	http.StatusTooManyRequests:     "Too Many Requests",
	http.StatusInternalServerError: "Internal Server Error",
	http.StatusBadGateway:          "Bad Gateway",
	http.StatusServiceUnavailable:  "Service Unavailable",
	http.StatusGatewayTimeout:      "Gateway Timeout",
}

// StatusTitle returns the fixed title for a status code, or "Error" when the
// status is unmapped.
func StatusTitle(status int) string {
	if title, ok := statusTitles[status]; ok {
		return title
	}
	return "Error"
}

// NewProblem creates a problem details body with the canonical title.
func NewProblem(status int, detail string) *ProblemDetails {
	return &ProblemDetails{Title: StatusTitle(status), Status: status, Detail: detail}
}
