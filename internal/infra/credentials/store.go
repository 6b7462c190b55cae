package credentials

import (
	"context"
	"errors"
	"strings"

	"studio/internal/storage"
)

const (
	ProviderGemini = "gemini"

	keyPrefix = "studio_credential_"
)

// Store keeps provider API keys in the studio's key/value store so a key can
// be configured without restarting with a new environment.
type Store struct {
	kv storage.KV
}

func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

// Token returns the stored key for provider, or "" when none is set.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	token, err := s.kv.Get(ctx, keyPrefix+provider)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("gemini api key is required")
	}
	return s.kv.Set(ctx, keyPrefix+ProviderGemini, key)
}

// Clear removes a stored provider key.
func (s *Store) Clear(ctx context.Context, provider string) error {
	return s.kv.Delete(ctx, keyPrefix+provider)
}
