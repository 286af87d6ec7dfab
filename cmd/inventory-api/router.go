// Package main provides the inventory API server entrypoint.
package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/retailplus/inventory-engine/cmd/inventory-api/handlers"
	"github.com/retailplus/inventory-engine/cmd/inventory-api/middleware"
	"github.com/retailplus/inventory-engine/internal/agent"
	"github.com/retailplus/inventory-engine/internal/config"
	"github.com/retailplus/inventory-engine/internal/observability"
	"github.com/retailplus/inventory-engine/internal/storage"
)

// Deps bundles the services the router exposes.
type Deps struct {
	Service   *agent.Service
	Demand    *storage.DemandRepository
	Inventory *storage.InventoryRepository
	Stats     *storage.StatsRepository
}

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	requestTimeout := cfg.Server.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 120 * time.Second
	}
	r.Use(chimiddleware.Timeout(requestTimeout))

	agentHandler := handlers.NewAgentHandler(logger, deps.Service)
	catalogHandler := handlers.NewCatalogHandler(logger, deps.Demand, deps.Inventory, deps.Stats)

	r.Route("/api", func(r chi.Router) {
		// Health check (unauthenticated)
		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok","service":"inventory-engine"}`))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Auth))

			// Dashboard queries
			r.Get("/products", catalogHandler.Products)
			r.Get("/top-products", catalogHandler.TopProducts)
			r.Get("/critical-inventory", catalogHandler.CriticalInventory)
			r.Get("/dashboard-stats", catalogHandler.DashboardStats)

			// Model-backed operations
			r.Post("/forecast", agentHandler.Forecast)
			r.Post("/inventory-status", agentHandler.InventoryStatus)
			r.Post("/pricing", agentHandler.Pricing)
			r.Post("/supply-chain", agentHandler.SupplyChain)
			r.Post("/optimize", agentHandler.Optimize)
		})
	})

	return r
}
