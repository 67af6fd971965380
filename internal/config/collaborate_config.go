package config

import (
	"strings"
	"time"
)

const (
	collaborateURLVar     = "COLLABORATE_URL"
	collaborateKeyVar     = "COLLABORATE_KEY"
	collaborateSecretVar  = "COLLABORATE_SECRET"
	collaborateTimeoutVar = "COLLABORATE_TIMEOUT"
	assertionTTLVar       = "COLLABORATE_ASSERTION_TTL"
)

type Collaborate struct{}

var _ CollaborateConfig = Collaborate{}

// GetCollaborateURL returns the vendor API base URL without a trailing slash.
func (Collaborate) GetCollaborateURL() string {
	return strings.TrimRight(GetEnv(collaborateURLVar, ""), "/")
}

func (Collaborate) GetCollaborateKey() string {
	return GetEnv(collaborateKeyVar, "")
}

func (Collaborate) GetCollaborateSecret() string {
	return GetEnv(collaborateSecretVar, "")
}

func (Collaborate) GetCollaborateTimeout() time.Duration {
	return getDuration(collaborateTimeoutVar, 30*time.Second)
}

func (Collaborate) GetAssertionTTL() time.Duration {
	return getDuration(assertionTTLVar, 5*time.Minute)
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(GetEnv(envVar, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
