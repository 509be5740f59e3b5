package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "TOKEN_TTL_MINUTES", "SLA_SWEEP_INTERVAL_SECONDS", "SLA_SWEEP_BATCH_SIZE", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8000" {
		t.Fatalf("expected port 8000, got %q", cfg.Port)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.SweepInterval != 5*time.Minute || cfg.SweepBatchSize != 200 {
		t.Fatalf("unexpected sweep config %s/%d", cfg.SweepInterval, cfg.SweepBatchSize)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected default cors origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL_MINUTES", "-1")
	t.Setenv("SLA_SWEEP_INTERVAL_SECONDS", "0")
	t.Setenv("SLA_SWEEP_BATCH_SIZE", "abc")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("CHATBOT_LIVE_ENABLED", "false")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port override, got %q", cfg.Port)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("expected invalid ttl to fall back, got %s", cfg.TokenTTL)
	}
	if cfg.SweepInterval != 0 {
		t.Fatalf("expected sweep disabled, got %s", cfg.SweepInterval)
	}
	if cfg.SweepBatchSize != 200 {
		t.Fatalf("expected batch fallback, got %d", cfg.SweepBatchSize)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.ChatbotLiveEnabled {
		t.Fatalf("expected chatbot live disabled")
	}
}
