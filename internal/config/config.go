package config

import (
	"fmt"
	"time"

	"github.com/GriffinCanCode/apimanager/internal/shared/types"
	"github.com/GriffinCanCode/apimanager/internal/transport"
	"github.com/GriffinCanCode/apimanager/internal/trust"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	API       APIConfig
	Trust     TrustConfig
	Transport TransportConfig
	Logging   LogConfig
}

// APIConfig holds request pipeline configuration.
type APIConfig struct {
	RootURL           string        `envconfig:"API_ROOT_URL"`
	Debug             bool          `envconfig:"API_DEBUG" default:"false"`
	Timeout           time.Duration `envconfig:"API_TIMEOUT" default:"60s"`
	OfflineDelay      time.Duration `envconfig:"API_OFFLINE_DELAY" default:"100ms"`
	ConnectivityCheck bool          `envconfig:"API_CONNECTIVITY_CHECK" default:"true"`
}

// TrustConfig holds TLS pinning configuration.
type TrustConfig struct {
	PinningMode trust.PinningMode `envconfig:"API_PINNING_MODE" default:"disabled"`
	PinsDir     string            `envconfig:"API_PINS_DIR"`
}

// TransportConfig holds HTTP backend configuration.
type TransportConfig struct {
	Backend   string  `envconfig:"API_BACKEND" default:"resty"`
	RateLimit float64 `envconfig:"API_RATE_LIMIT_RPS" default:"0"`
	UserAgent string  `envconfig:"API_USER_AGENT" default:"apimanager/1.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Timeout:           types.DefaultTimeout,
			OfflineDelay:      100 * time.Millisecond,
			ConnectivityCheck: true,
		},
		Trust: TrustConfig{
			PinningMode: trust.PinningDisabled,
		},
		Transport: TransportConfig{
			Backend:   transport.BackendResty,
			UserAgent: transport.DefaultUserAgent,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Validate checks values envconfig cannot check on its own.
func (c *Config) Validate() error {
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	if c.API.OfflineDelay < 0 {
		return fmt.Errorf("API_OFFLINE_DELAY cannot be negative, got %s", c.API.OfflineDelay)
	}
	if c.Transport.RateLimit < 0 {
		return fmt.Errorf("API_RATE_LIMIT_RPS cannot be negative, got %g", c.Transport.RateLimit)
	}
	switch c.Transport.Backend {
	case transport.BackendResty, transport.BackendRetryableHTTP:
	default:
		return fmt.Errorf("API_BACKEND must be %s or %s, got %q",
			transport.BackendResty, transport.BackendRetryableHTTP, c.Transport.Backend)
	}
	return nil
}
