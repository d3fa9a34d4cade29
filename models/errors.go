package models

import "fmt"

// Error codes used across the fetch and extraction layers.
const (
	ErrCodePolicyDenied    = "POLICY_DENIED"
	ErrCodeTransport       = "TRANSPORT_FAILURE"
	ErrCodeBlocked         = "BLOCKED_RESPONSE"
	ErrCodeExtractionEmpty = "EXTRACTION_EMPTY"
	ErrCodeParseFailure    = "PARSE_FAILURE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// FetchError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type FetchError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(code, message string, err error) *FetchError {
	return &FetchError{Code: code, Message: message, Err: err}
}
