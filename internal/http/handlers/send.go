package handlers

import (
	"net/http"
	"strings"

	"studio/internal/domain"
	"studio/internal/domain/jsoncfg"
	"studio/internal/studio"
)

// Send runs one exchange. The body is multipart with a text field, optional
// session_id, aspect_ratio and resolution fields, and image files under
// "files".
func (a *App) Send(w http.ResponseWriter, r *http.Request) {
	if err := a.parseForm(w, r); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid form")
		return
	}
	opts := jsoncfg.SendOptions{
		AspectRatio: strings.TrimSpace(r.FormValue("aspect_ratio")),
		Resolution:  strings.ToUpper(strings.TrimSpace(r.FormValue("resolution"))),
	}
	if err := opts.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	res, err := a.Studio.Send(r.Context(), studio.SendRequest{
		SessionID:   r.FormValue("session_id"),
		Text:        r.FormValue("text"),
		Uploads:     formUploads(r, "files"),
		AspectRatio: domain.ImageAspectRatio(opts.AspectRatio),
		Resolution:  domain.ImageResolution(opts.Resolution),
	})
	if err != nil {
		a.studioError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}

// Stop cancels the running send of a session and refunds it.
func (a *App) Stop(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("session_id")
	stopped := a.Studio.Stop(sid)
	a.json(w, http.StatusOK, map[string]any{
		"stopped": stopped,
		"credits": a.Studio.Store().Economy().Credits,
	})
}

// Command answers a text command without generating an image.
func (a *App) Command(w http.ResponseWriter, r *http.Request) {
	if err := a.parseForm(w, r); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid form")
		return
	}
	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text is required")
		return
	}
	reply := a.Studio.Assist(r.Context(), text, formUploads(r, "files"))
	a.json(w, http.StatusOK, map[string]string{"reply": reply})
}
