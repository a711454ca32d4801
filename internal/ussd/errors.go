package ussd

import (
	"errors"
	"fmt"

	"github.com/agrimint/ussd-service/internal/platform"
)

var (
	// ErrInvalidArgument means malformed or missing input, detected
	// before any network call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthenticated means the operation needs a credential the
	// session does not carry. No network call is made.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrAuthenticationFailed means the platform rejected the
	// credential or the secret.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrRegistrationRejected means the identity platform refused to
	// create the subscriber.
	ErrRegistrationRejected = errors.New("registration rejected")

	// ErrUpstreamUnavailable covers network failures, timeouts and 5xx
	// responses from any collaborator.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNotFound means a referenced federation or member is absent.
	ErrNotFound = errors.New("not found")

	// ErrTooManyAttempts means the per-phone credential throttle
	// rejected the attempt before any network call.
	ErrTooManyAttempts = errors.New("too many attempts")
)

// classify maps a downstream client error onto the gateway taxonomy.
// The original status stays in the message for diagnostics.
func classify(err error) error {
	var derr *platform.Error
	if !errors.As(err, &derr) {
		return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}

	switch {
	case derr.StatusCode == 400:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, derr)
	case derr.StatusCode == 401 || derr.StatusCode == 403:
		return fmt.Errorf("%w: %s", ErrAuthenticationFailed, derr)
	case derr.StatusCode == 404:
		return fmt.Errorf("%w: %s", ErrNotFound, derr)
	default:
		// transport errors (status 0) and 5xx
		return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, derr)
	}
}
