// Package bootstrap builds the studio from configuration. Every binary goes
// through it so they all see the same store and generator.
package bootstrap

import (
	"context"
	"fmt"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/infra/credentials"
	"studio/internal/prompt"
	"studio/internal/providers/genai"
	"studio/internal/providers/image"
	"studio/internal/retry"
	"studio/internal/storage"
	"studio/internal/studio"
)

// OpenKV opens the configured key/value backend. Postgres gets a pgx pool and
// its table is created on first use.
func OpenKV(ctx context.Context, cfg *infra.Config, logger infra.Logger) (storage.KV, storage.Closer, error) {
	if cfg.StoreDriver != storage.DriverPostgres {
		return storage.OpenFile(ctx, cfg.StoreDriver, cfg.StoreDSN)
	}
	pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	kv := storage.NewPostgresKV(infra.NewSQLRunner(pool, logger))
	if err := kv.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate kv table: %w", err)
	}
	return kv, func() error { pool.Close(); return nil }, nil
}

// GeminiAPIKey prefers the environment and falls back to the key stored with
// cmd/geminikey.
func GeminiAPIKey(ctx context.Context, cfg *infra.Config, kv storage.KV) (string, error) {
	if cfg.GeminiAPIKey != "" {
		return cfg.GeminiAPIKey, nil
	}
	return credentials.NewStore(kv).GeminiAPIKey(ctx)
}

// NewGenerator returns the Gemini generator when a key is available, and the
// offline synthetic one otherwise.
func NewGenerator(cfg *infra.Config, apiKey string, synth *prompt.Synthesizer, logger *infra.Logger) (image.Generator, error) {
	if apiKey == "" {
		logger.Warn().Msg("no Gemini API key configured; using the synthetic generator")
		return image.NewSyntheticGenerator(logger), nil
	}
	client, err := genai.NewClient(genai.Options{
		APIKey:      apiKey,
		BaseURL:     cfg.GeminiBaseURL,
		ImageModel:  cfg.GeminiImageModel,
		ChatModel:   cfg.GeminiChatModel,
		MinInterval: cfg.GeminiRateInterval,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	policy := retry.Policy{
		MaxRetries:   cfg.RetryMaxRetries,
		InitialDelay: cfg.RetryInitialDelay,
		Logger:       logger,
	}
	return image.NewGeminiGenerator(client, synth, policy, logger), nil
}

// NewStudio loads persisted state from kv and wires the orchestrator.
func NewStudio(ctx context.Context, cfg *infra.Config, kv storage.KV, logger *infra.Logger) (*studio.Studio, error) {
	aspect, err := domain.ParseAspectRatio(cfg.DefaultAspectRatio, domain.AspectPortrait)
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_ASPECT_RATIO: %w", err)
	}
	resolution, err := domain.ParseResolution(cfg.DefaultResolution, domain.Resolution2K)
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_RESOLUTION: %w", err)
	}

	store := studio.NewStore(studio.StoreOptions{
		KV:             storage.NewQuota(kv, cfg.StoreQuotaBytes),
		InitialCredits: cfg.InitialCredits,
		Logger:         logger,
	})
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("load studio state: %w", err)
	}

	apiKey, err := GeminiAPIKey(ctx, cfg, kv)
	if err != nil {
		return nil, fmt.Errorf("read gemini api key: %w", err)
	}
	synth := prompt.NewSynthesizer(nil)
	gen, err := NewGenerator(cfg, apiKey, synth, logger)
	if err != nil {
		return nil, err
	}

	var exports *storage.FileStore
	if cfg.ExportPath != "" {
		exports, err = storage.NewFileStore(cfg.ExportPath)
		if err != nil {
			return nil, fmt.Errorf("export dir: %w", err)
		}
	}

	return studio.New(studio.Options{
		Store:       store,
		Generator:   gen,
		Synthesizer: synth,
		Exports:     exports,
		ImageCost:   cfg.ImageCost,
		AspectRatio: aspect,
		Resolution:  resolution,
		Logger:      logger,
	})
}
