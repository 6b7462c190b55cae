package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/middleware"
	"studio/internal/studio"
)

// DefaultMaxUploadBytes bounds a multipart request.
const DefaultMaxUploadBytes = 64 << 20

type App struct {
	Studio         *studio.Studio
	Logger         *infra.Logger
	MaxUploadBytes int64
}

func NewApp(st *studio.Studio, logger *infra.Logger) *App {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &App{Studio: st, Logger: logger, MaxUploadBytes: DefaultMaxUploadBytes}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: message}})
}

// studioError maps core errors to responses. Anything unexpected is logged
// and reported as internal.
func (a *App) studioError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *domain.InsufficientCreditsError
	switch {
	case errors.As(err, &insufficient):
		a.json(w, http.StatusPaymentRequired, map[string]errorBody{"error": {
			Code:    "insufficient_credits",
			Message: "not enough credits for this request",
			Details: map[string]any{
				"balance":      insufficient.Balance,
				"cost":         insufficient.Cost,
				"billing_flow": insufficient.Flow,
			},
		}})
	case errors.Is(err, domain.ErrEmptyRequest):
		a.error(w, http.StatusBadRequest, "bad_request", "text or at least one image is required")
	case errors.Is(err, domain.ErrBusy):
		a.error(w, http.StatusConflict, "busy", "a request is already running for this session")
	case errors.Is(err, domain.ErrBillingInProgress):
		a.error(w, http.StatusConflict, "billing_in_progress", "another billing operation is running")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrTemplateIncomplete), errors.Is(err, domain.ErrInvalidOption):
		a.error(w, http.StatusUnprocessableEntity, "invalid_selection", err.Error())
	case errors.Is(err, studio.ErrNothingToExport):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	default:
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "request failed")
	}
}
