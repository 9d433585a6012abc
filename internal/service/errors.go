package service

import "errors"

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrRateLimited     = errors.New("too many magic link requests")
	ErrUnauthenticated = errors.New("no valid session")
	ErrTokenInvalid    = errors.New("magic link token is invalid")
	ErrTokenExpired    = errors.New("magic link token has expired")
	ErrUnknownProduct  = errors.New("unknown product")
)
