package handlers

import (
	"encoding/json"
	"net/http"

	"studio/internal/domain"
)

type topUpRequest struct {
	PackID string `json:"pack_id"`
	Amount int    `json:"amount"`
}

// Billing lists the plan, the packs and the flow a user should be sent to.
func (a *App) Billing(w http.ResponseWriter, r *http.Request) {
	economy := a.Studio.Store().Economy()
	a.json(w, http.StatusOK, map[string]any{
		"credits":    economy.Credits,
		"subscribed": economy.Subscribed,
		"flow":       domain.FlowFor(economy.Subscribed),
		"image_cost": a.Studio.ImageCost(),
		"subscription": map[string]any{
			"credits": domain.SubscriptionCredits,
			"price":   domain.SubscriptionPrice,
		},
		"packs": domain.TopUpPacks,
	})
}

func (a *App) Subscribe(w http.ResponseWriter, r *http.Request) {
	economy, err := a.Studio.Subscribe(r.Context())
	if err != nil {
		a.studioError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, economy)
}

func (a *App) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	economy, err := a.Studio.CancelSubscription(r.Context())
	if err != nil {
		a.studioError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, economy)
}

func (a *App) TopUp(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	economy, err := a.Studio.TopUp(r.Context(), req.PackID, req.Amount)
	if err != nil {
		a.studioError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, economy)
}
