// Package config provides 12-factor configuration management for the UI client.
//
// Configuration is loaded from environment variables with sensible defaults.
// An optional YAML or TOML file is applied on top, and CLI flags can
// override both for development flexibility.
//
// Configuration Sections:
//   - Server: UI server origin, websocket and resource paths, form factor
//   - Connection: heartbeat, idle timeout and reconnect backoff tunables
//   - Model: model download timeout, retries, hash check and disk cache
//   - API: local view adapter listen address
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting of the view adapter
//
// Example Usage:
//
//	cfg, err := config.LoadFile("uiclient.yaml")
//	if err != nil {
//		cfg = config.LoadOrDefault()
//	}
//	fmt.Printf("connecting to %s\n", cfg.Server.Origin)
//
// Environment Variables:
//   - UI_ORIGIN, UI_SOCKET_PATH, UI_RESOURCE_PATH, UI_FORM_FACTOR
//   - PING_INTERVAL_MS, IDLE_TIMEOUT_MS, BASE_RECONNECT_DELAY_MS, MAX_RECONNECT_DELAY_MS
//   - MODEL_FETCH_TIMEOUT_MS, MODEL_RETRY_MAX, MODEL_VERIFY_HASH, MODEL_CACHE_DIR
//   - API_ENABLED, API_HOST, API_PORT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
