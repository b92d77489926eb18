package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockflow-erp/stockflow/internal/auth"
	"github.com/stockflow-erp/stockflow/internal/masterdata/products"
	"github.com/stockflow-erp/stockflow/internal/masterdata/suppliers"
	"github.com/stockflow-erp/stockflow/internal/masterdata/warehouses"
	"github.com/stockflow-erp/stockflow/internal/observability"
	"github.com/stockflow-erp/stockflow/internal/purchaseorder"
	"github.com/stockflow-erp/stockflow/internal/shared"
	"github.com/stockflow-erp/stockflow/internal/sourcing"
	"github.com/stockflow-erp/stockflow/internal/stock"
	"github.com/stockflow-erp/stockflow/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config
	Tokens *shared.TokenStore

	AuthHandler          *auth.Handler
	StockHandler         *stock.Handler
	SourcingHandler      *sourcing.Handler
	PurchaseOrderHandler *purchaseorder.Handler
	ProductsHandler      *products.Handler
	SuppliersHandler     *suppliers.Handler
	WarehousesHandler    *warehouses.Handler
	JobHandler           *jobs.Handler
	Metrics              *observability.Metrics
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
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything below requires a bearer token.
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(params.Logger, params.Tokens))

		r.Route("/inventory/products/{id}", func(r chi.Router) {
			params.StockHandler.MountRoutes(r)
			params.SourcingHandler.MountRoutes(r)
		})
		r.Route("/purchase-orders", params.PurchaseOrderHandler.MountRoutes)

		r.Route("/masterdata", func(r chi.Router) {
			r.Route("/products", params.ProductsHandler.MountRoutes)
			r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
			r.Route("/warehouses", params.WarehousesHandler.MountRoutes)
		})

		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
