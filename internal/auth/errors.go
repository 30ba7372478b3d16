package auth

import "github.com/pkg/errors"

var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidSigningMethod = errors.New("invalid signing method")
	ErrMissingSubject       = errors.New("token has no subject")
	ErrEmptySecret          = errors.New("token secret is empty")
)
