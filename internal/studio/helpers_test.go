package studio

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"studio/internal/domain"
	"studio/internal/providers/image"
	"studio/internal/storage"
)

type stubGenerator struct {
	mu       sync.Mutex
	generate []image.GenerateRequest
	edit     []image.EditRequest
	result   image.Result
	err      error
	started  chan struct{}
	release  chan struct{}
}

func (g *stubGenerator) Generate(ctx context.Context, req image.GenerateRequest) (image.Result, error) {
	g.mu.Lock()
	g.generate = append(g.generate, req)
	g.mu.Unlock()
	return g.wait()
}

func (g *stubGenerator) Edit(ctx context.Context, req image.EditRequest) (image.Result, error) {
	g.mu.Lock()
	g.edit = append(g.edit, req)
	g.mu.Unlock()
	return g.wait()
}

func (g *stubGenerator) wait() (image.Result, error) {
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
	return g.result, g.err
}

func (g *stubGenerator) calls() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.generate), len(g.edit)
}

func imageResult(payload string) image.Result {
	data := base64.StdEncoding.EncodeToString([]byte(payload))
	return image.Result{Image: "data:image/png;base64," + data, MimeType: "image/png", Data: data}
}

func sequence(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func fixedClock() func() time.Time {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func newTestStore(kv storage.KV, credits int) *Store {
	return NewStore(StoreOptions{
		KV:             kv,
		InitialCredits: credits,
		Now:            fixedClock(),
		NewID:          sequence("s"),
	})
}

func newTestStudio(t *testing.T, gen *stubGenerator, store *Store) *Studio {
	t.Helper()
	st, err := New(Options{
		Store:     store,
		Generator: gen,
		ImageCost: 60,
		Sleep:     func(context.Context, time.Duration) error { return nil },
		Now:       fixedClock(),
		NewTurnID: sequence("t"),
	})
	if err != nil {
		t.Fatalf("new studio: %v", err)
	}
	return st
}

func fileUpload(name, content string) domain.Upload {
	return domain.Upload{
		Name:       name,
		MimeType:   "image/png",
		DisplayURL: "upload://" + name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func brokenUpload(name string) domain.Upload {
	return domain.Upload{
		Name:     name,
		MimeType: "image/png",
		Open: func() (io.ReadCloser, error) {
			return nil, errors.New("disk gone")
		},
	}
}
