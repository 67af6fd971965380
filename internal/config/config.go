package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	CollaborateConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetAPISecret() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// CollaborateConfig holds the vendor API credentials. Values are read once at
// client construction and are not reloaded.
type CollaborateConfig interface {
	GetCollaborateURL() string
	GetCollaborateKey() string
	GetCollaborateSecret() string
	GetCollaborateTimeout() time.Duration
	GetAssertionTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	Collaborate
}

func New() Config {
	return mainConfig{}
}
