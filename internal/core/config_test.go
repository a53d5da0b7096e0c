package core

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Stream.Quality != "exhigh" {
		t.Errorf("Stream.Quality = %q, want %q", cfg.Stream.Quality, "exhigh")
	}

	wantSources := []string{"kuwo", "kugou", "migu", "bilibili"}
	if len(cfg.Stream.RescueSources) != len(wantSources) {
		t.Fatalf("Stream.RescueSources = %v, want %v", cfg.Stream.RescueSources, wantSources)
	}
	for i, s := range wantSources {
		if cfg.Stream.RescueSources[i] != s {
			t.Errorf("Stream.RescueSources[%d] = %q, want %q", i, cfg.Stream.RescueSources[i], s)
		}
	}

	if cfg.Login.MaxAttempts != 60 {
		t.Errorf("Login.MaxAttempts = %d, want 60", cfg.Login.MaxAttempts)
	}
	if cfg.Login.PollInterval != 2*time.Second {
		t.Errorf("Login.PollInterval = %v, want 2s", cfg.Login.PollInterval)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}
