package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"campaignops/internal/http/handlers"
	"campaignops/internal/liquidity"
	"campaignops/internal/middleware"
)

// Options configures the middleware chain.
type Options struct {
	Logger          zerolog.Logger
	CORSOrigins     []string
	RateLimitPerMin int
	DefaultLocale   liquidity.Locale
	CountryLookup   middleware.CountryLookup
	// OperatorSecret signs operator tokens. Empty disables operator routes.
	OperatorSecret string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSOrigins),
		middleware.RateLimit(opts.RateLimitPerMin, time.Minute),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/summary", app.LedgerSummary)
			r.Get("/queue", app.LedgerQueue)
			r.Get("/beneficiaries", app.LedgerBeneficiaries)
		})
		r.Route("/trust", func(r chi.Router) {
			r.Get("/shareholders", app.TrustShareholders)
			r.Get("/projection", app.TrustProjection)
		})

		r.Post("/split", app.Split)
		r.Post("/validate", app.Validate)

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", app.ListCampaigns)
			r.Get("/{id}/split", app.CampaignSplit)
			r.With(middleware.RequireOperator(opts.OperatorSecret)).Post("/{id}/resolve", app.CampaignResolve)
		})

		r.With(middleware.RequireOperator(opts.OperatorSecret)).Post("/intake/transactions", app.IntakeTransactions)
		r.Get("/export/transparency.zip", app.ExportTransparency)
	})

	return r
}
