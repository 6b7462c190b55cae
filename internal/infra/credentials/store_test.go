package credentials

import (
	"context"
	"errors"
	"testing"

	"studio/internal/storage"
)

type failingKV struct {
	storage.KV
	err error
}

func (f failingKV) Get(ctx context.Context, key string) (string, error) {
	return "", f.err
}

func TestGeminiAPIKey(t *testing.T) {
	kv := storage.NewMemoryKV()
	_ = kv.Set(context.Background(), "studio_credential_gemini", " abc123 ")
	store := NewStore(kv)
	key, err := store.GeminiAPIKey(context.Background())
	if err != nil {
		t.Fatalf("GeminiAPIKey error: %v", err)
	}
	if key != "abc123" {
		t.Fatalf("expected abc123, got %q", key)
	}
}

func TestGeminiAPIKeyMissing(t *testing.T) {
	store := NewStore(storage.NewMemoryKV())
	key, err := store.GeminiAPIKey(context.Background())
	if err != nil {
		t.Fatalf("GeminiAPIKey error: %v", err)
	}
	if key != "" {
		t.Fatalf("expected empty key, got %q", key)
	}
}

func TestGeminiAPIKeyBackendError(t *testing.T) {
	boom := errors.New("disk gone")
	store := NewStore(failingKV{err: boom})
	if _, err := store.GeminiAPIKey(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestSetGeminiAPIKey(t *testing.T) {
	kv := storage.NewMemoryKV()
	store := NewStore(kv)
	if err := store.SetGeminiAPIKey(context.Background(), " secret "); err != nil {
		t.Fatalf("SetGeminiAPIKey error: %v", err)
	}
	if got, _ := kv.Get(context.Background(), "studio_credential_gemini"); got != "secret" {
		t.Fatalf("stored %q, want secret", got)
	}
	if err := store.Clear(context.Background(), ProviderGemini); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if key, _ := store.GeminiAPIKey(context.Background()); key != "" {
		t.Fatalf("expected cleared key, got %q", key)
	}
}

func TestSetGeminiAPIKeyEmpty(t *testing.T) {
	store := NewStore(storage.NewMemoryKV())
	if err := store.SetGeminiAPIKey(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty key")
	}
}
