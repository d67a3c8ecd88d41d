package draw

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/nanodraw/validation"
)

// Config defaults.
const (
	DefaultBaseURL    = "https://grsaiapi.com"
	DefaultTimeout    = 60 * time.Second
	DefaultDrawPath   = "/v1/draw/nano-banana"
	DefaultResultPath = "/v1/draw/result"
)

// Config configures the draw client. It is loaded from the "draw" section.
type Config struct {
	// BaseURL is the provider origin.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIKey is sent as a bearer credential. Usually set via DRAW_API_KEY.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Timeout bounds the wait for stream headers and each whole result lookup.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Model is used when a request names none.
	Model string `yaml:"model" mapstructure:"model"`

	DrawPath   string `yaml:"draw_path" mapstructure:"draw_path"`
	ResultPath string `yaml:"result_path" mapstructure:"result_path"`

	Poll PollConfig `yaml:"poll" mapstructure:"poll"`
}

// PollConfig controls PollResult.
type PollConfig struct {
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`
	MaxInterval time.Duration `yaml:"max_interval" mapstructure:"max_interval"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.DrawPath == "" {
		c.DrawPath = DefaultDrawPath
	}
	if c.ResultPath == "" {
		c.ResultPath = DefaultResultPath
	}
	if c.Poll.MaxAttempts <= 0 {
		c.Poll.MaxAttempts = 60
	}
	if c.Poll.Interval <= 0 {
		c.Poll.Interval = 2 * time.Second
	}
	if c.Poll.MaxInterval <= 0 {
		c.Poll.MaxInterval = 10 * time.Second
	}
}

// Validate checks the configuration after defaults are applied. Every
// problem is reported at once as an INVALID_INPUT error.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	v := validation.New().
		Custom(err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "",
			"draw.base_url", fmt.Sprintf("must be an http(s) URL, got %q", c.BaseURL)).
		Custom(c.Timeout > 0, "draw.timeout", "must be positive").
		Required("draw.draw_path", c.DrawPath).
		Required("draw.result_path", c.ResultPath).
		Custom(c.Poll.MaxInterval >= c.Poll.Interval, "draw.poll.max_interval", "must not be below poll.interval")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
