package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrEmptyRequest        = errors.New("empty request")
	ErrBusy                = errors.New("request already in flight")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrServiceUnavailable  = errors.New("image service unavailable")
	ErrPermissionDenied    = errors.New("permission denied: check the API key and billing status")
	ErrEncodingFailure     = errors.New("attachment encoding failed")
	ErrNoImageProduced     = errors.New("no image produced")
	ErrTemplateIncomplete  = errors.New("template incomplete")
	ErrInvalidOption       = errors.New("invalid option")
	ErrBillingInProgress   = errors.New("billing operation in progress")
)

// InsufficientCreditsError is returned before dispatch when the balance
// cannot cover a request. Flow tells the caller which billing flow to open.
type InsufficientCreditsError struct {
	Balance int
	Cost    int
	Flow    BillingFlow
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: balance %d, cost %d", e.Balance, e.Cost)
}

func (e *InsufficientCreditsError) Unwrap() error {
	return ErrInsufficientCredits
}
