package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("KAFKA_BROKER", "localhost:9092")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_ACCESS_KEY", "minio")
	t.Setenv("MINIO_SECRET_KEY", "minio123")
	t.Setenv("NCP_API_KEY_ID", "key-id")
	t.Setenv("NCP_API_KEY", "key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RadiusKm != 15.0 {
		t.Errorf("radius = %v, want 15", cfg.RadiusKm)
	}
	if cfg.TopK != 5 {
		t.Errorf("top-k = %d, want 5", cfg.TopK)
	}
	if cfg.GatePermissive {
		t.Error("gate must default to strict")
	}
	if cfg.MaxInFlight != 3 || cfg.DispatchSpacing != 200*time.Millisecond {
		t.Errorf("limiter defaults = %d/%v", cfg.MaxInFlight, cfg.DispatchSpacing)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("cache ttl = %v, want 10m", cfg.CacheTTL)
	}
	if cfg.RequestTopic != "match-requests" || cfg.ResultTopic != "match-results" {
		t.Errorf("topics = %s/%s", cfg.RequestTopic, cfg.ResultTopic)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MATCH_RADIUS_KM", "7.5")
	t.Setenv("MATCH_TOP_K", "3")
	t.Setenv("GATE_PERMISSIVE", "true")
	t.Setenv("ETA_DISPATCH_SPACING", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RadiusKm != 7.5 || cfg.TopK != 3 {
		t.Errorf("got radius=%v topK=%d", cfg.RadiusKm, cfg.TopK)
	}
	if !cfg.GatePermissive {
		t.Error("GATE_PERMISSIVE=true not applied")
	}
	if cfg.DispatchSpacing != 500*time.Millisecond {
		t.Errorf("spacing = %v, want 500ms", cfg.DispatchSpacing)
	}
}

func TestLoad_InvalidValueFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("MATCH_TOP_K", "five")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TopK != 5 {
		t.Errorf("top-k = %d, want default 5", cfg.TopK)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKER", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for missing KAFKA_BROKER")
	}
}
