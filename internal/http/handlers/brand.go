package handlers

import (
	"encoding/json"
	"net/http"

	"studio/internal/domain"
)

func (a *App) GetBrand(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Studio.Store().Brand())
}

func (a *App) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var profile domain.BrandProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Studio.UpdateBrand(r.Context(), profile); err != nil {
		a.studioError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.Studio.Store().Brand())
}

// DeleteAccount wipes every persisted key and export.
func (a *App) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := a.Studio.Reset(r.Context()); err != nil {
		a.studioError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
