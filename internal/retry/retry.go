// Package retry wraps calls to the remote image service with exponential
// backoff on transient overload.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
)

const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = 2 * time.Second
)

// Class is the retry classification of an error.
type Class int

const (
	ClassOther Class = iota
	ClassOverloaded
	ClassPermissionDenied
)

func (c Class) String() string {
	switch c {
	case ClassOverloaded:
		return "overloaded"
	case ClassPermissionDenied:
		return "permission_denied"
	default:
		return "other"
	}
}

// StatusCoder is implemented by errors that carry an HTTP-like status code.
type StatusCoder interface {
	StatusCode() int
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy configures Do. The first call is always made; up to MaxRetries
// further calls follow while the error stays classified as overloaded.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	Sleep        Sleeper
	Logger       *zerolog.Logger
}

// DefaultPolicy returns three retries starting at two seconds.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, InitialDelay: DefaultInitialDelay}
}

// Classify maps an error to its retry class.
func Classify(err error) Class {
	if err == nil {
		return ClassOther
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		switch sc.StatusCode() {
		case http.StatusServiceUnavailable:
			return ClassOverloaded
		case http.StatusForbidden:
			return ClassPermissionDenied
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "overloaded") || strings.Contains(msg, "unavailable") {
		return ClassOverloaded
	}
	return ClassOther
}

// Do invokes op sequentially until it succeeds, fails permanently, or the
// retry budget is spent. Overload is retried with a doubling delay;
// permission errors surface immediately as domain.ErrPermissionDenied; any
// other error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	logger := p.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	delay := p.InitialDelay
	if delay <= 0 {
		delay = DefaultInitialDelay
	}
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		var zero T
		switch Classify(err) {
		case ClassPermissionDenied:
			return zero, fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
		case ClassOverloaded:
			if retries == 0 {
				return zero, fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
			}
			logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("retries_left", retries).
				Dur("delay", delay).
				Msg("retry: model overloaded, backing off")
			if sleepErr := sleep(ctx, delay); sleepErr != nil {
				return zero, sleepErr
			}
			retries--
			delay *= 2
		default:
			return zero, err
		}
	}
}

// SleepContext blocks for d unless ctx is cancelled first.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
