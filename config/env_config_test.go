package config

import "testing"

func TestLoadEnvConfigDefaults(t *testing.T) {
	t.Setenv("STORAGE_ENDPOINT", "minio.local:9000")
	t.Setenv("STORAGE_BUCKET", "gallery")
	t.Setenv("STORAGE_PUBLIC_URL", "")
	t.Setenv("MAX_UPLOAD_SIZE", "")
	t.Setenv("REALTIME_FANOUT", "")
	t.Setenv("GRAFANA_OTLP_ENDPOINT", "https://otel.example.com")

	cfg := LoadEnvConfig()

	if cfg.Storage.Provider != "minio" {
		t.Fatalf("expected default provider minio, got %q", cfg.Storage.Provider)
	}
	if cfg.Storage.PublicURL != "http://minio.local:9000/gallery" {
		t.Fatalf("unexpected derived public url: %q", cfg.Storage.PublicURL)
	}
	if cfg.Upload.MaxSize != 10485760 {
		t.Fatalf("unexpected default max upload size: %d", cfg.Upload.MaxSize)
	}
	if cfg.Realtime.Fanout != "amqp" {
		t.Fatalf("unexpected default fanout: %q", cfg.Realtime.Fanout)
	}
	if cfg.Grafana.OTLPEndpoint != "otel.example.com" {
		t.Fatalf("expected scheme stripped from OTLP endpoint, got %q", cfg.Grafana.OTLPEndpoint)
	}
}

func TestLoadEnvConfigOverrides(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "S3")
	t.Setenv("STORAGE_PUBLIC_URL", "https://cdn.example.com/objects/")
	t.Setenv("MAX_UPLOAD_SIZE", "2048")
	t.Setenv("REALTIME_FANOUT", "local")
	t.Setenv("CACHE_TTL_SECONDS", "not-a-number")

	cfg := LoadEnvConfig()

	if cfg.Storage.Provider != "s3" {
		t.Fatalf("expected provider s3, got %q", cfg.Storage.Provider)
	}
	if cfg.Storage.PublicURL != "https://cdn.example.com/objects" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Storage.PublicURL)
	}
	if cfg.Upload.MaxSize != 2048 {
		t.Fatalf("expected max upload size 2048, got %d", cfg.Upload.MaxSize)
	}
	if cfg.Realtime.Fanout != "local" {
		t.Fatalf("expected local fanout, got %q", cfg.Realtime.Fanout)
	}
	if cfg.Cache.TTLSeconds != 300 {
		t.Fatalf("expected invalid ttl to fall back to 300, got %d", cfg.Cache.TTLSeconds)
	}
}
