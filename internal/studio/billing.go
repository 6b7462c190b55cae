package studio

import (
	"context"
	"fmt"
	"time"

	"studio/internal/domain"
)

// Simulated gateway latency. No payment is taken.
const (
	subscribeDelay = 2 * time.Second
	cancelDelay    = 1500 * time.Millisecond
	topUpDelay     = 1500 * time.Millisecond
)

// beginBilling admits one billing operation at a time.
func (s *Studio) beginBilling() (func(), error) {
	s.billingMu.Lock()
	defer s.billingMu.Unlock()
	if s.billingBusy {
		return nil, domain.ErrBillingInProgress
	}
	s.billingBusy = true
	return func() {
		s.billingMu.Lock()
		s.billingBusy = false
		s.billingMu.Unlock()
	}, nil
}

// Subscribe activates the plan and grants its credits.
func (s *Studio) Subscribe(ctx context.Context) (domain.EconomyState, error) {
	done, err := s.beginBilling()
	if err != nil {
		return domain.EconomyState{}, err
	}
	defer done()
	if err := s.sleep(ctx, subscribeDelay); err != nil {
		return domain.EconomyState{}, err
	}
	if _, err := s.store.AddCredits(ctx, domain.SubscriptionCredits); err != nil {
		return domain.EconomyState{}, err
	}
	if err := s.store.SetSubscribed(ctx, true); err != nil {
		return domain.EconomyState{}, err
	}
	s.logger.Info().Int("credits", domain.SubscriptionCredits).Msg("subscription activated")
	return s.store.Economy(), nil
}

// CancelSubscription ends the plan. Remaining credits are kept.
func (s *Studio) CancelSubscription(ctx context.Context) (domain.EconomyState, error) {
	done, err := s.beginBilling()
	if err != nil {
		return domain.EconomyState{}, err
	}
	defer done()
	if err := s.sleep(ctx, cancelDelay); err != nil {
		return domain.EconomyState{}, err
	}
	if err := s.store.SetSubscribed(ctx, false); err != nil {
		return domain.EconomyState{}, err
	}
	s.logger.Info().Msg("subscription cancelled")
	return s.store.Economy(), nil
}

// TopUp adds credits, either from a named pack or a positive amount.
func (s *Studio) TopUp(ctx context.Context, packID string, amount int) (domain.EconomyState, error) {
	if packID != "" {
		pack, ok := findPack(packID)
		if !ok {
			return domain.EconomyState{}, fmt.Errorf("top-up pack %q: %w", packID, domain.ErrInvalidOption)
		}
		amount = pack.Credits
	}
	if amount <= 0 {
		return domain.EconomyState{}, fmt.Errorf("top-up amount %d: %w", amount, domain.ErrInvalidOption)
	}
	done, err := s.beginBilling()
	if err != nil {
		return domain.EconomyState{}, err
	}
	defer done()
	if err := s.sleep(ctx, topUpDelay); err != nil {
		return domain.EconomyState{}, err
	}
	if _, err := s.store.AddCredits(ctx, amount); err != nil {
		return domain.EconomyState{}, err
	}
	s.logger.Info().Int("credits", amount).Msg("credits topped up")
	return s.store.Economy(), nil
}

func findPack(id string) (domain.TopUpPack, bool) {
	for _, p := range domain.TopUpPacks {
		if p.ID == id {
			return p, true
		}
	}
	return domain.TopUpPack{}, false
}
