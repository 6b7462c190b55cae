package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *App) ListSessions(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"active_session_id": a.Studio.Store().ActiveID(),
		"items":             a.Studio.Store().Sessions(),
	})
}

// NewSession starts an empty active session.
func (a *App) NewSession(w http.ResponseWriter, r *http.Request) {
	id := a.Studio.NewSession()
	a.json(w, http.StatusCreated, map[string]string{"id": id})
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Studio.Store().Session(chi.URLParam(r, "id"))
	if err != nil {
		a.studioError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, sess)
}

// LoadSession makes a stored session active.
func (a *App) LoadSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Studio.LoadSession(id); err != nil {
		a.studioError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.Studio.Snapshot())
}

func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.Studio.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.studioError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportSession downloads the session's generated images as a zip.
func (a *App) ExportSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	archive, err := a.Studio.Export(r.Context(), id)
	if err != nil {
		a.studioError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=session-%s.zip", id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
