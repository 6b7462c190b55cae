package studio

import "sync"

type tokenState int

const (
	tokenActive tokenState = iota
	tokenCancelled
	tokenSettled
)

// CancelToken is shared by one send and Stop. Exactly one of Cancel or
// Settle wins; the loser is a no-op.
type CancelToken struct {
	mu       sync.Mutex
	state    tokenState
	onCancel func()
}

// NewCancelToken runs onCancel once, inside Cancel, if Cancel wins.
func NewCancelToken(onCancel func()) *CancelToken {
	return &CancelToken{onCancel: onCancel}
}

// Cancel marks the send cancelled. It reports false if the send already
// settled or was cancelled before.
func (t *CancelToken) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != tokenActive {
		return false
	}
	t.state = tokenCancelled
	if t.onCancel != nil {
		t.onCancel()
	}
	return true
}

// Cancelled reports whether Cancel won.
func (t *CancelToken) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == tokenCancelled
}

// Settle runs apply and closes the token unless it was cancelled first.
// It reports whether apply ran.
func (t *CancelToken) Settle(apply func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != tokenActive {
		return false
	}
	t.state = tokenSettled
	apply()
	return true
}
