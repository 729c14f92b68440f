package identity

import "errors"

var (
	InvalidCredentialsErr = errors.New("invalid email or password")
	NoSessionErr          = errors.New("no active session")
	CodeAlreadyUsedErr    = errors.New("authorization code already redeemed")
	InvalidCodeErr        = errors.New("invalid or expired authorization code")
	InvalidTokenPairErr   = errors.New("invalid token pair")
)
