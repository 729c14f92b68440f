package recovery

import "errors"

var (
	NotAuthenticatedErr  = errors.New("recovery flow is not authenticated")
	PasswordMismatchErr  = errors.New("passwords do not match")
	PasswordTooShortErr  = errors.New("password must be at least 6 characters")
	InvalidLinkFormatErr = errors.New("invalid link format")
)
