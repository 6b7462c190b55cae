package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// State returns the snapshot the UI renders from.
func (a *App) State(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Studio.Snapshot())
}
