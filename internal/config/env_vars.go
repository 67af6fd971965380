package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	portEnvVar      = "PORT"
	appNameVar      = "APP_NAME"
	logLevelEnvVar  = "LOG_LEVEL"
	apiSecretEnvVar = "API_SECRET"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// LoadDotEnv loads variables from the given files (".env" when none are given)
// without overriding values already present in the environment. Missing files
// are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("godotenv.Load %s: %w", f, err)
		}
	}
	return nil
}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Collaborate Bridge")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, "info")
}

// GetAPISecret returns the shared secret callers present as a bearer token on
// /api routes. An empty secret disables the check.
func (EnvVars) GetAPISecret() string {
	return GetEnv(apiSecretEnvVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
