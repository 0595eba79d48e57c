package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GeminiModelID != "gemini-2.5-flash" {
		t.Errorf("GeminiModelID = %q, want gemini-2.5-flash", cfg.GeminiModelID)
	}
	if cfg.DefaultVisitMinutes != 30 {
		t.Errorf("DefaultVisitMinutes = %d, want 30", cfg.DefaultVisitMinutes)
	}
	if cfg.BookingBufferMinutes != 5 {
		t.Errorf("BookingBufferMinutes = %d, want 5", cfg.BookingBufferMinutes)
	}
	if cfg.ModelTimeout != 8*time.Second {
		t.Errorf("ModelTimeout = %s, want 8s", cfg.ModelTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_TIMEOUT", "3s")
	t.Setenv("DEFAULT_VISIT_MINUTES", "45")
	t.Setenv("SESSION_TTL", "1h")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.ModelTimeout != 3*time.Second {
		t.Errorf("ModelTimeout = %s, want 3s", cfg.ModelTimeout)
	}
	if cfg.DefaultVisitMinutes != 45 {
		t.Errorf("DefaultVisitMinutes = %d, want 45", cfg.DefaultVisitMinutes)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %s, want 1h", cfg.SessionTTL)
	}
}

func TestGetEnvAsIntInvalid(t *testing.T) {
	t.Setenv("DEFAULT_VISIT_MINUTES", "not-a-number")

	cfg := Load()
	if cfg.DefaultVisitMinutes != 30 {
		t.Errorf("DefaultVisitMinutes = %d, want fallback 30", cfg.DefaultVisitMinutes)
	}
}
