package gotrue

import (
	"context"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
)

// tokenVerifier checks a raw token against the issuer's published keys.
type tokenVerifier interface {
	Verify(ctx context.Context, rawToken string) error
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func (v *oidcVerifier) Verify(ctx context.Context, rawToken string) error {
	if _, err := v.verifier.Verify(ctx, rawToken); err != nil {
		return errors.Wrap(err, "oidc verify")
	}
	return nil
}

// WithOIDCIssuer enables signature verification of adopted tokens against
// the issuer's JWKS. Discovery runs once at construction; configuration
// failure is deferred to the first adoption rather than construction so a
// flaky network at cold start cannot brick the provider.
func WithOIDCIssuer(ctx context.Context, issuer string) Option {
	return func(c *Client) {
		c.verifier = &lazyVerifier{issuer: issuer, ctx: ctx, clientID: c.anonKey}
	}
}

// lazyVerifier defers OIDC discovery until the first verification call.
type lazyVerifier struct {
	issuer   string
	clientID string
	ctx      context.Context

	once  sync.Once
	inner tokenVerifier
	err   error
}

func (v *lazyVerifier) Verify(ctx context.Context, rawToken string) error {
	v.once.Do(func() {
		provider, err := oidc.NewProvider(v.ctx, v.issuer)
		if err != nil {
			v.err = errors.Wrap(err, "oidc discovery")
			return
		}
		v.inner = &oidcVerifier{verifier: provider.Verifier(&oidc.Config{
			ClientID:          v.clientID,
			SkipClientIDCheck: true,
		})}
	})
	if v.err != nil {
		return v.err
	}
	return v.inner.Verify(ctx, rawToken)
}
