package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
	"studio/internal/domain/jsoncfg"
	"studio/internal/prompt"
	"studio/internal/studio"
)

type templateResponse struct {
	Instruction string             `json:"instruction"`
	References  []string           `json:"references"`
	Result      *studio.SendResult `json:"result,omitempty"`
}

func (a *App) ListTemplates(w http.ResponseWriter, r *http.Request) {
	forms := make([]prompt.Form, 0, len(prompt.Kinds))
	for _, k := range prompt.Kinds {
		form, err := prompt.FormFor(k)
		if err != nil {
			a.studioError(w, r, err)
			return
		}
		forms = append(forms, form)
	}
	a.json(w, http.StatusOK, map[string]any{"items": forms})
}

// TemplateForm answers the select-template event.
func (a *App) TemplateForm(w http.ResponseWriter, r *http.Request) {
	form, err := a.Studio.SelectTemplate(chi.URLParam(r, "kind"))
	if err != nil {
		a.studioError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, form)
}

// ConfirmTemplate synthesizes a template selection. With dry_run=true only
// the instruction is returned; otherwise it is sent at once. The selection
// travels as JSON in the "selection" field; images under "products",
// "model", "background" (the room for interior) and "logo".
func (a *App) ConfirmTemplate(w http.ResponseWriter, r *http.Request) {
	if err := a.parseForm(w, r); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid form")
		return
	}
	payload, err := jsoncfg.ParseTemplate([]byte(r.FormValue("selection")))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if kind := chi.URLParam(r, "kind"); kind != "" && kind != payload.Kind {
		a.error(w, http.StatusBadRequest, "bad_request", "kind does not match the route")
		return
	}
	kind, err := prompt.ParseKind(payload.Kind)
	if err != nil {
		a.studioError(w, r, err)
		return
	}
	sel := prompt.Selection{
		Kind:       kind,
		Options:    payload.Options,
		Surprise:   payload.Surprise,
		Products:   formUploads(r, "products"),
		Model:      formUpload(r, "model"),
		Background: formUpload(r, "background"),
		Logo:       formUpload(r, "logo"),
	}

	draft, err := a.Studio.ConfirmTemplate(sel)
	if err != nil {
		a.studioError(w, r, err)
		return
	}
	resp := templateResponse{Instruction: draft.Instruction, References: referenceNames(draft.References)}

	if dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run")); dryRun {
		a.json(w, http.StatusOK, resp)
		return
	}
	res, err := a.Studio.Send(r.Context(), studio.SendRequest{
		SessionID:   r.FormValue("session_id"),
		Text:        draft.Instruction,
		Uploads:     draft.References,
		AspectRatio: domain.ImageAspectRatio(payload.AspectRatio),
		Resolution:  domain.ImageResolution(payload.Resolution),
	})
	if err != nil {
		a.studioError(w, r, err)
		return
	}
	resp.Result = &res
	a.json(w, http.StatusOK, resp)
}

func referenceNames(refs []domain.Upload) []string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names
}
