package errors

import (
	"errors"
	"fmt"
)

// Error kinds shared by the auth gateway, the namespace manager and the HTTP layer.
var (
	// Request errors
	ErrInvalidRequest       = errors.New("invalid request")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrEndpointNotFound     = errors.New("endpoint not found")

	// Login errors
	ErrProviderError        = errors.New("identity provider error")
	ErrInvalidState         = errors.New("invalid state parameter")
	ErrTokenExchangeFailed  = errors.New("token exchange failed")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrDomainRestricted     = errors.New("domain restricted")

	// Session errors
	ErrNoSession       = errors.New("no session found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// Storage errors
	ErrObjectNotFound = errors.New("object not found")
	ErrPartialFailure = errors.New("operation partially failed")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
