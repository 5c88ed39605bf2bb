package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	StorageConfig
	BatchConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Storage
	Batch
}

var _ Config = (*mainConfig)(nil)

// New loads the configuration from the environment.
func New() (Config, error) {
	c := &mainConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("[config New] parse env: %w", err)
	}
	c.Cors.Origins = trimCSV(c.Cors.Origins)
	return c, nil
}

// Validate reports every missing required value in one error.
func (c *mainConfig) Validate() error {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"GOOGLE_CLIENT_ID", c.ClientID},
		{"GOOGLE_CLIENT_SECRET", c.ClientSecret},
		{"REDIRECT_URI", c.RedirectURI},
		{"AUTH_DOMAIN", c.AllowedDomain},
		{"FRONTEND_URL", c.FrontendURL},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(c.Cors.Origins) == 0 {
		missing = append(missing, "ALLOWED_ORIGINS")
	}
	if c.ObjectStore == ObjectStoreS3 && c.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("[config Validate] missing required environment variables: %s", strings.Join(missing, ", "))
	}

	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreSQLite:
	default:
		return fmt.Errorf("[config Validate] unknown SESSION_STORE %q", c.SessionStore)
	}
	switch c.ObjectStore {
	case ObjectStoreMemory, ObjectStoreS3:
	default:
		return fmt.Errorf("[config Validate] unknown OBJECT_STORE %q", c.ObjectStore)
	}
	return nil
}

// trimCSV removes empty entries from a comma split slice.
func trimCSV(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}
