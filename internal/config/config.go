package config

import (
	"time"

	"github.com/me/shopfloor/pkg/model"
)

// ServerConfig holds configuration for the shopfloor server.
type ServerConfig struct {
	Addr      string // Listen address (default ":8080")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
	DBPath    string // SQLite database path (default ~/.shopfloor/shopfloor.db, ":memory:" for testing)

	// ScheduleTimeout bounds one scheduling request, including user
	// expressions. Zero disables the limit.
	ScheduleTimeout time.Duration
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		LogLevel:        "info",
		LogFormat:       "text",
		ScheduleTimeout: 30 * time.Second,
	}
}

// EngineConfig holds defaults applied to every scheduling invocation.
type EngineConfig struct {
	// DefaultAlgorithm is used when a request names no algorithm.
	DefaultAlgorithm model.Algorithm
	// Recommendations enables efficiency hints in computed metrics.
	Recommendations bool
}

// DefaultEngineConfig returns the engine defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultAlgorithm: model.AlgorithmPriority,
		Recommendations:  true,
	}
}
