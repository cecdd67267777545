package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gudangku/gudangku/internal/observability"
	"github.com/gudangku/gudangku/internal/product"
	"github.com/gudangku/gudangku/internal/purchase"
	"github.com/gudangku/gudangku/internal/stock"
	"github.com/gudangku/gudangku/internal/webhook"
	"github.com/gudangku/gudangku/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	ProductHandler  *product.Handler
	StockHandler    *stock.Handler
	PurchaseHandler *purchase.Handler
	WebhookHandler  *webhook.Handler
	JobsHandler     *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/products", params.ProductHandler.MountRoutes)
	r.Route("/stocks", params.StockHandler.MountRoutes)
	r.Route("/purchase", params.PurchaseHandler.MountRoutes)
	r.Route("/webhook", params.WebhookHandler.MountRoutes)
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
