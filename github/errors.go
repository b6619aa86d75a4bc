package github

import (
	"fmt"

	"codedrip/models"
)

// APIError is a non-200 response from the GitHub API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API Error: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return models.ErrRemoteAPI
}

// DecodeError is a 200 response whose body could not be turned into a typed record.
type DecodeError struct {
	Resource string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v", e.Resource, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{models.ErrRemoteAPI, e.Err}
}
