package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountExpired     = errors.New("account expired")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrMalformedSnapshot  = errors.New("malformed snapshot")
)

// Actor is the authenticated identity a handler extracts from the request
// context and passes down for policy checks.
type Actor struct {
	ID       string
	Username string
	Role     string
}
