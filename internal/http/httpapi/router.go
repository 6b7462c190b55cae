package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"studio/internal/http/handlers"
	"studio/internal/infra"
	"studio/internal/middleware"
)

// NewRouter wires every studio route. Generation routes are rate limited
// per client at ratePerMinute; allowedOrigins are the browser origins of the
// studio UI.
func NewRouter(app *handlers.App, logger infra.Logger, ratePerMinute int, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.CORS(allowedOrigins),
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
	)

	limited := middleware.RateLimit(ratePerMinute, time.Minute)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Get("/v1/state", app.State)
	r.With(limited).Post("/v1/send", app.Send)
	r.Post("/v1/stop", app.Stop)
	r.With(limited).Post("/v1/command", app.Command)

	r.Route("/v1/templates", func(r chi.Router) {
		r.Get("/", app.ListTemplates)
		r.Get("/{kind}", app.TemplateForm)
		r.With(limited).Post("/{kind}", app.ConfirmTemplate)
	})

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Get("/", app.ListSessions)
		r.Post("/", app.NewSession)
		r.Get("/{id}", app.GetSession)
		r.Delete("/{id}", app.DeleteSession)
		r.Post("/{id}/load", app.LoadSession)
		r.Get("/{id}/export", app.ExportSession)
	})

	r.Route("/v1/billing", func(r chi.Router) {
		r.Get("/", app.Billing)
		r.Post("/subscribe", app.Subscribe)
		r.Post("/cancel", app.CancelSubscription)
		r.Post("/topup", app.TopUp)
	})

	r.Get("/v1/brand", app.GetBrand)
	r.Put("/v1/brand", app.UpdateBrand)
	r.Delete("/v1/account", app.DeleteAccount)

	return r
}
