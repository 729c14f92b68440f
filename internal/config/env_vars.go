package config

import (
	"os"
	"time"
)

const (
	appNameVar          = "APP_NAME"
	envVar              = "ENV"
	identityURLVar      = "IDENTITY_BASE_URL"
	identityAnonKeyVar  = "IDENTITY_ANON_KEY"
	oidcIssuerVar       = "OIDC_ISSUER"
	bootstrapTimeoutVar = "BOOTSTRAP_TIMEOUT"
	profileAPIURLVar    = "PROFILE_API_URL"
	deepLinkSchemeVar   = "DEEP_LINK_SCHEME"
)

// defaultBootstrapTimeout bounds how long cold start may wait on the
// identity provider before the app degrades to unauthenticated.
const defaultBootstrapTimeout = 15 * time.Second

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ IdentityConfig = EnvVars{}
var _ BackendConfig = EnvVars{}
var _ DeepLinkConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "MediMind")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "development")
}

func (EnvVars) GetIdentityBaseURL() string {
	return GetEnv(identityURLVar, "http://localhost:9999/auth/v1")
}

func (EnvVars) GetIdentityAnonKey() string {
	return GetEnv(identityAnonKeyVar, "")
}

func (EnvVars) GetOIDCIssuer() string {
	return GetEnv(oidcIssuerVar, "")
}

func (EnvVars) GetBootstrapTimeout() time.Duration {
	raw := GetEnv(bootstrapTimeoutVar, "")
	if raw == "" {
		return defaultBootstrapTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultBootstrapTimeout
	}
	return d
}

func (EnvVars) GetProfileAPIURL() string {
	return GetEnv(profileAPIURLVar, "http://localhost:8000/api/v1")
}

func (EnvVars) GetDeepLinkScheme() string {
	return GetEnv(deepLinkSchemeVar, "medimind")
}

func GetEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}
