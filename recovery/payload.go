// Package recovery implements the out-of-band password-reset handshake:
// classifying incoming deep links, redeeming their tokens or codes for a
// session, and driving the final password update.
package recovery

// TypeRecovery is the marker the identity provider puts on password-reset
// links to distinguish them from other verification links.
const TypeRecovery = "recovery"

// Payload is what a recovery deep link carries, regardless of whether it
// arrived as URL fragment parameters, query parameters or pre-parsed
// navigation params. Partially populated payloads are valid: a bare
// ErrorDescription short-circuits the flow without any exchange attempt.
type Payload struct {
	AccessToken      string
	RefreshToken     string
	Code             string // single-use PKCE exchange code
	Type             string // "recovery" on reset links
	ErrorDescription string // provider-reported failure, terminal when set
}

// HasTokenPair reports whether the payload carries a complete token pair.
func (p *Payload) HasTokenPair() bool {
	return p != nil && p.AccessToken != "" && p.RefreshToken != ""
}

// Empty reports whether nothing usable was extracted.
func (p *Payload) Empty() bool {
	return p == nil || (p.AccessToken == "" && p.RefreshToken == "" &&
		p.Code == "" && p.Type == "" && p.ErrorDescription == "")
}

// Params is a pre-parsed navigation parameter bundle, supplied when a
// routing layer intercepted the link before this package saw the raw URL.
type Params struct {
	AccessToken      string `json:"accessToken,omitempty"`
	RefreshToken     string `json:"refreshToken,omitempty"`
	Code             string `json:"code,omitempty"`
	Type             string `json:"type,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}
