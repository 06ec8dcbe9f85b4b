package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrSessionExpired     = errors.New("auth: session expired or reused")
	ErrTokenExpired       = errors.New("auth: access token expired")
	ErrTokenInvalid       = errors.New("auth: access token invalid")
	ErrRegistrationClosed = errors.New("auth: registration closed")
	ErrUserInactive       = errors.New("auth: account deactivated")
	ErrPasswordTooShort   = errors.New("auth: password below minimum length")
	ErrPasswordTooLong    = errors.New("auth: password above maximum length")
)
