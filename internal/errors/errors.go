package errors

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the session and recovery core. Sentinels classify
// severity and remediation; user-visible text is attached via Wrapf at the
// call site.
var (
	// Session lifecycle
	ErrSessionFetchTimeout = errors.New("session bootstrap timed out") // non-fatal, degrade to unauthenticated
	ErrProfileFetchFailed  = errors.New("profile fetch failed")        // non-fatal, degrade to provider-only identity
	ErrSignOutFailed       = errors.New("sign out failed")             // non-fatal, local state still clears

	// Recovery flow
	ErrRecoveryLinkInvalid    = errors.New("recovery link invalid")    // terminal for the link
	ErrRecoveryExchangeFailed = errors.New("recovery exchange failed") // terminal for the link
	ErrPasswordUpdateFailed   = errors.New("password update failed")   // retryable, session remains valid
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

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
