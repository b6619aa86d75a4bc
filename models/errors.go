package models

import "errors"

// Error categories shared by every layer. Callers classify with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrInvalidID    = errors.New("invalid id")
	ErrRemoteAPI    = errors.New("remote api error")
	ErrPersistence  = errors.New("persistence error")
)

// InputError is a caller mistake whose message is safe to echo back verbatim.
type InputError struct {
	Msg string
}

func NewInputError(msg string) *InputError {
	return &InputError{Msg: msg}
}

func (e *InputError) Error() string { return e.Msg }

func (e *InputError) Unwrap() error { return ErrInvalidInput }
