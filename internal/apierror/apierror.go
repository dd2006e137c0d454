// Package apierror provides the error envelopes written by HTTP handlers.
// Handlers never pass raw database or driver errors through to clients.
package apierror

// APIError is the envelope for 4xx/5xx responses outside the sale and
// payment flows.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation failed", Fields: fields}
}

// Failure is the structured failure returned by the sale and payment
// endpoints: {"success": false, "error": "...", "kind": "..."}.
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
}

func NewFailure(kind, msg string) *Failure {
	return &Failure{Success: false, Error: msg, Kind: kind}
}
