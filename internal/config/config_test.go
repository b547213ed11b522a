package config

import (
	"testing"
	"time"

	"github.com/me/shopfloor/pkg/model"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging = %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.DBPath != "" {
		t.Errorf("DBPath = %q, want empty", cfg.DBPath)
	}
	if cfg.ScheduleTimeout != 30*time.Second {
		t.Errorf("ScheduleTimeout = %v, want 30s", cfg.ScheduleTimeout)
	}
}

func TestDefaultEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	if cfg.DefaultAlgorithm != model.AlgorithmPriority {
		t.Errorf("DefaultAlgorithm = %q, want priority", cfg.DefaultAlgorithm)
	}
	if !cfg.Recommendations {
		t.Error("Recommendations should be enabled by default")
	}
}
