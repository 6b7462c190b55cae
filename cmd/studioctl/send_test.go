package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"studio/internal/providers/image"
	"studio/internal/storage"
	"studio/internal/studio"
)

type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (g *blockingGenerator) Generate(ctx context.Context, req image.GenerateRequest) (image.Result, error) {
	g.started <- struct{}{}
	<-g.release
	return image.Result{}, nil
}

func (g *blockingGenerator) Edit(ctx context.Context, req image.EditRequest) (image.Result, error) {
	return g.Generate(ctx, image.GenerateRequest{})
}

func TestSendOrStopRefundsOnInterrupt(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{}, 1), release: make(chan struct{})}
	defer close(gen.release)

	store := studio.NewStore(studio.StoreOptions{KV: storage.NewMemoryKV(), InitialCredits: 120})
	st, err := studio.New(studio.Options{Store: store, Generator: gen, ImageCost: 60})
	if err != nil {
		t.Fatalf("studio: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := sendOrStop(ctx, st, studio.SendRequest{SessionID: store.ActiveID(), Text: "shoes"})
		errc <- err
	}()

	<-gen.started
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("interrupted send did not return")
	}
	if got := store.Economy().Credits; got != 120 {
		t.Fatalf("credits = %d, want refund to 120", got)
	}
	if st.Loading(store.ActiveID()) {
		t.Fatal("send should no longer be in flight")
	}
}
