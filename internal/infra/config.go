package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int

	CORSAllowedOrigins []string

	GeminiAPIKey       string
	GeminiBaseURL      string
	GeminiImageModel   string
	GeminiChatModel    string
	GeminiRateInterval time.Duration

	RetryMaxRetries   int
	RetryInitialDelay time.Duration

	StoreDriver     string
	StoreDSN        string
	StoreQuotaBytes int
	DatabaseURL     string
	ExportPath      string

	DefaultAspectRatio string
	DefaultResolution  string
	ImageCost          int
	InitialCredits     int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),

		GeminiAPIKey:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiImageModel:   getEnv("GEMINI_IMAGE_MODEL", "gemini-3-pro-image-preview"),
		GeminiChatModel:    getEnv("GEMINI_CHAT_MODEL", "gemini-2.5-flash"),
		GeminiRateInterval: time.Millisecond * time.Duration(getEnvInt("GEMINI_RATE_INTERVAL_MS", 0)),

		RetryMaxRetries:   getEnvInt("RETRY_MAX_RETRIES", 3),
		RetryInitialDelay: time.Millisecond * time.Duration(getEnvInt("RETRY_INITIAL_DELAY_MS", 2000)),

		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", "bolt")),
		StoreDSN:        getEnv("STORE_DSN", "data/studio.bolt"),
		StoreQuotaBytes: getEnvInt("STORE_QUOTA_BYTES", 5*1024*1024),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ExportPath:      getEnv("EXPORT_PATH", "data/exports"),

		DefaultAspectRatio: getEnv("DEFAULT_ASPECT_RATIO", "3:4"),
		DefaultResolution:  getEnv("DEFAULT_RESOLUTION", "2K"),
		ImageCost:          getEnvInt("IMAGE_COST", 60),
		InitialCredits:     getEnvInt("INITIAL_CREDITS", 120),
	}

	switch cfg.StoreDriver {
	case "memory", "bolt", "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.ImageCost <= 0 {
		return nil, fmt.Errorf("IMAGE_COST must be positive")
	}
	if cfg.RetryMaxRetries < 0 {
		return nil, fmt.Errorf("RETRY_MAX_RETRIES must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key, fallback string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, fallback), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
