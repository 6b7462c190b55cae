package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"studio/internal/bootstrap"
	"studio/internal/infra"
	"studio/internal/infra/credentials"
)

func main() {
	var (
		keyFlag   string
		clearFlag bool
	)
	flag.StringVar(&keyFlag, "key", "", "Gemini API key (falls back to GEMINI_API_KEY)")
	flag.BoolVar(&clearFlag, "clear", false, "remove the stored key instead of setting it")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = cfg.GeminiAPIKey
	}
	if key == "" && !clearFlag {
		fmt.Fprintln(os.Stderr, "GEMINI API key is required via -key or environment")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := infra.NewLogger("cli").With().Str("cmd", "geminikey").Str("driver", cfg.StoreDriver).Logger()
	kv, closeKV, err := bootstrap.OpenKV(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer closeKV()

	store := credentials.NewStore(kv)
	if clearFlag {
		if err := store.Clear(ctx, credentials.ProviderGemini); err != nil {
			fmt.Fprintf(os.Stderr, "failed to clear gemini api key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("GEMINI API key removed")
		return
	}
	if err := store.SetGeminiAPIKey(ctx, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist gemini api key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("GEMINI API key stored successfully")
}
