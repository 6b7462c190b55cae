package studio

import "testing"

func TestCancelTokenRefundsOnce(t *testing.T) {
	refunds := 0
	token := NewCancelToken(func() { refunds++ })

	if !token.Cancel() {
		t.Fatalf("first cancel should win")
	}
	if token.Cancel() {
		t.Fatalf("second cancel should be a no-op")
	}
	if token.Settle(func() { t.Fatalf("settle must not run after cancel") }) {
		t.Fatalf("settle should report false after cancel")
	}
	if refunds != 1 {
		t.Fatalf("expected one refund, got %d", refunds)
	}
}

func TestCancelTokenSettleWins(t *testing.T) {
	refunds := 0
	token := NewCancelToken(func() { refunds++ })

	ran := false
	if !token.Settle(func() { ran = true }) || !ran {
		t.Fatalf("settle should run")
	}
	if token.Cancel() {
		t.Fatalf("cancel after settle should be a no-op")
	}
	if token.Cancelled() || refunds != 0 {
		t.Fatalf("settled token must not refund, got %d", refunds)
	}
}
