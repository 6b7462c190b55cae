package studio

import (
	"context"
	"errors"
	"testing"
	"time"

	"studio/internal/domain"
	"studio/internal/storage"
)

func TestSubscribeAndCancel(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemoryKV(), 120)
	st := newTestStudio(t, &stubGenerator{}, store)

	var slept []time.Duration
	st.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	econ, err := st.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if econ.Credits != 1120 || !econ.Subscribed {
		t.Fatalf("unexpected economy %+v", econ)
	}
	if st.Snapshot().BillingFlow != domain.BillingFlowTopUp {
		t.Fatalf("subscribed users should be routed to top-up")
	}

	econ, err = st.CancelSubscription(ctx)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if econ.Subscribed || econ.Credits != 1120 {
		t.Fatalf("unexpected economy %+v", econ)
	}
	if len(slept) != 2 || slept[0] != 2*time.Second || slept[1] != 1500*time.Millisecond {
		t.Fatalf("unexpected delays %v", slept)
	}
}

func TestTopUp(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemoryKV(), 120)
	st := newTestStudio(t, &stubGenerator{}, store)

	econ, err := st.TopUp(ctx, "pro", 0)
	if err != nil || econ.Credits != 2120 {
		t.Fatalf("pack top-up: %+v %v", econ, err)
	}
	econ, err = st.TopUp(ctx, "", 80)
	if err != nil || econ.Credits != 2200 {
		t.Fatalf("amount top-up: %+v %v", econ, err)
	}
	if _, err := st.TopUp(ctx, "gold", 0); !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if _, err := st.TopUp(ctx, "", -5); !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
}

func TestBillingOneAtATime(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemoryKV(), 120)
	st := newTestStudio(t, &stubGenerator{}, store)

	entered := make(chan struct{})
	release := make(chan struct{})
	st.sleep = func(context.Context, time.Duration) error {
		close(entered)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := st.Subscribe(ctx)
		done <- err
	}()
	<-entered
	if !st.Snapshot().BillingBusy {
		t.Fatalf("billing should be busy")
	}
	if _, err := st.TopUp(ctx, "starter", 0); !errors.Is(err, domain.ErrBillingInProgress) {
		t.Fatalf("expected ErrBillingInProgress, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("subscribe: %v", err)
	}
}

func TestBillingCancelledContext(t *testing.T) {
	store := newTestStore(storage.NewMemoryKV(), 120)
	st := newTestStudio(t, &stubGenerator{}, store)
	st.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := st.Subscribe(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if econ := store.Economy(); econ.Subscribed || econ.Credits != 120 {
		t.Fatalf("economy must not change, got %+v", econ)
	}
}
