package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"STORE_DRIVER", "STORE_DSN", "IMAGE_COST", "INITIAL_CREDITS", "RETRY_MAX_RETRIES", "RETRY_INITIAL_DELAY_MS", "DEFAULT_ASPECT_RATIO", "DEFAULT_RESOLUTION"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StoreDriver != "bolt" || cfg.StoreDSN != "data/studio.bolt" {
		t.Fatalf("store = %s %s", cfg.StoreDriver, cfg.StoreDSN)
	}
	if cfg.ImageCost != 60 || cfg.InitialCredits != 120 {
		t.Fatalf("economy = %d/%d, want 60/120", cfg.ImageCost, cfg.InitialCredits)
	}
	if cfg.RetryMaxRetries != 3 || cfg.RetryInitialDelay != 2*time.Second {
		t.Fatalf("retry = %d/%s", cfg.RetryMaxRetries, cfg.RetryInitialDelay)
	}
	if cfg.DefaultAspectRatio != "3:4" || cfg.DefaultResolution != "2K" {
		t.Fatalf("defaults = %s/%s", cfg.DefaultAspectRatio, cfg.DefaultResolution)
	}
}

func TestLoadConfigPostgresRequiresDatabaseURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://example")
	if _, err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "redis")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoadConfigRejectsNonPositiveCost(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("IMAGE_COST", "0")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for zero cost")
	}
}

func TestLoadConfigCORSOrigins(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://studio.example , ,http://localhost:5173")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://studio.example", "http://localhost:5173"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("origins = %v", cfg.CORSAllowedOrigins)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Fatalf("origins = %v", cfg.CORSAllowedOrigins)
		}
	}
}
