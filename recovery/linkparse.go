package recovery

import (
	"net/url"
	"strings"
)

// Route names whose presence in a link's path marks it as a reset link.
// Providers vary, so both spellings the mobile router has shipped with are
// accepted.
var resetRoutes = map[string]bool{
	"reset-password": true,
	"reset":          true,
}

// IsRecoveryLink is the cheap detection predicate applied before full
// parsing, e.g. to decide whether to intercept a URL at all. It is
// deliberately broad: providers deliver recovery parameters as plain query
// strings, as fragments, or as PKCE codes, and missing a genuine reset link
// is worse than parsing a non-reset link and finding nothing.
func IsRecoveryLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	for _, segment := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if resetRoutes[segment] {
			return true
		}
	}
	// Hosts show up as the first "path" segment in scheme://route style
	// links, so check the host too.
	if resetRoutes[u.Host] {
		return true
	}
	q := u.Query()
	if q.Get("code") != "" || q.Get("type") == TypeRecovery {
		return true
	}
	return u.Fragment != ""
}

// ParseLink extracts a RecoveryPayload from a raw URL. Priority order, first
// usable source wins: fragment parameters, then query parameters. A nil
// result means the URL carries nothing recovery-shaped.
func ParseLink(raw string) (*Payload, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	if u.Fragment != "" {
		if values, err := url.ParseQuery(u.Fragment); err == nil {
			if p := fromValues(values); !p.Empty() {
				return p, nil
			}
		}
	}
	if p := fromValues(u.Query()); !p.Empty() {
		return p, nil
	}
	return nil, nil
}

// FromParams builds a payload from pre-parsed navigation parameters, the
// third encoding a routing layer may hand over. A nil result means the
// bundle carried nothing usable.
func FromParams(params Params) *Payload {
	p := &Payload{
		AccessToken:      params.AccessToken,
		RefreshToken:     params.RefreshToken,
		Code:             params.Code,
		Type:             params.Type,
		ErrorDescription: params.ErrorDescription,
	}
	if p.Empty() {
		return nil
	}
	return p
}

func fromValues(values url.Values) *Payload {
	return &Payload{
		AccessToken:      values.Get("access_token"),
		RefreshToken:     values.Get("refresh_token"),
		Code:             values.Get("code"),
		Type:             values.Get("type"),
		ErrorDescription: values.Get("error_description"),
	}
}
