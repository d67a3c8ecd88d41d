package server

import (
	"fmt"

	"github.com/kbukum/nanodraw/validation"
)

// Config holds HTTP server configuration.
type Config struct {
	Host        string     `yaml:"host" mapstructure:"host"`
	Port        int        `yaml:"port" mapstructure:"port"`
	ReadTimeout int        `yaml:"read_timeout" mapstructure:"read_timeout"` // seconds
	IdleTimeout int        `yaml:"idle_timeout" mapstructure:"idle_timeout"` // seconds
	Auth        AuthConfig `yaml:"auth" mapstructure:"auth"`
}

// AuthConfig enables bearer JWT checks on the draw routes when Secret is set.
type AuthConfig struct {
	// Secret is the HS256 signing key. Empty disables authentication.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Issuer, when set, must match the token's "iss" claim.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
}

// Enabled reports whether tokens are required.
func (a AuthConfig) Enabled() bool {
	return a.Secret != ""
}

// ApplyDefaults sets sensible default values for unset fields. There is no
// write timeout: generation streams stay open until the upstream settles.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	v := validation.New().
		Custom(c.Port >= 0 && c.Port <= 65535, "server.port", fmt.Sprintf("must be between 0 and 65535 (got: %d)", c.Port)).
		Custom(c.ReadTimeout >= 0, "server.read_timeout", "must be non-negative").
		Custom(c.IdleTimeout >= 0, "server.idle_timeout", "must be non-negative")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
