package auth

import "errors"

var (
	// ErrTokenInvalid indicates a token that fails signature, expiry or
	// claim validation.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrForbidden indicates the caller's role lacks a permission.
	ErrForbidden = errors.New("auth: insufficient permissions")

	// ErrInvalidSubject indicates an empty or malformed subject.
	ErrInvalidSubject = errors.New("auth: invalid subject")
)
