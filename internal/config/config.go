package config

// ServerConfig holds configuration for the schedsim API server.
type ServerConfig struct {
	Addr      string // Listen address (default ":8080")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
	DBPath    string // SQLite database path (default ~/.schedsim/schedsim.db, ":memory:" for testing)
	MaxTicks  int    // Per-run tick budget before a run is failed as stuck
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		MaxTicks:  1_000_000,
	}
}
