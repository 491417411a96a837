package middleware

import "errors"

var errInvalidHeader = errors.New("Invalid authorization header format")

type tokenError struct {
	err error
}

func (e *tokenError) Error() string { return "Invalid token: " + e.err.Error() }

func (e *tokenError) Unwrap() error { return e.err }
