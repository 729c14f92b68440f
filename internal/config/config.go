package config

import "time"

type Config interface {
	EnvConfig
	IdentityConfig
	BackendConfig
	DeepLinkConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

type IdentityConfig interface {
	GetIdentityBaseURL() string
	GetIdentityAnonKey() string
	GetOIDCIssuer() string
	GetBootstrapTimeout() time.Duration
}

type BackendConfig interface {
	GetProfileAPIURL() string
}

type DeepLinkConfig interface {
	GetDeepLinkScheme() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
