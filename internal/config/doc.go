// Package config provides 12-factor configuration management for the API manager.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - API: root URL, debug logging, default timeout, offline delay, connectivity check
//   - Trust: certificate pinning mode and pin bundle directory
//   - Transport: backend selection, client-side rate limit, User-Agent
//   - Logging: Log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Pinning %s for %s\n", cfg.Trust.PinningMode, cfg.API.RootURL)
//
// Environment Variables:
//   - API_ROOT_URL, API_DEBUG, API_TIMEOUT, API_OFFLINE_DELAY, API_CONNECTIVITY_CHECK
//   - API_PINNING_MODE, API_PINS_DIR
//   - API_BACKEND, API_RATE_LIMIT_RPS, API_USER_AGENT
//   - LOG_LEVEL, LOG_DEV
package config
