package handlers

import (
	"net/http"
	"strconv"

	"github.com/retailplus/inventory-engine/internal/observability"
	"github.com/retailplus/inventory-engine/internal/storage"
)

// CatalogHandler serves the read-only dashboard endpoints backed directly
// by the store, with no model involvement.
type CatalogHandler struct {
	logger    *observability.Logger
	demand    *storage.DemandRepository
	inventory *storage.InventoryRepository
	stats     *storage.StatsRepository
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(logger *observability.Logger, demand *storage.DemandRepository, inventory *storage.InventoryRepository, stats *storage.StatsRepository) *CatalogHandler {
	return &CatalogHandler{logger: logger, demand: demand, inventory: inventory, stats: stats}
}

// parseLimit reads the optional ?limit query parameter.
func parseLimit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return limit, true
}

// Products handles GET /api/products.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 100)
	if !ok {
		return
	}
	products, err := h.demand.ListProducts(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Product listing failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, map[string]any{"products": products})
}

// TopProducts handles GET /api/top-products.
func (h *CatalogHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 10)
	if !ok {
		return
	}
	products, err := h.demand.TopProducts(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Top products query failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, map[string]any{"top_products": products})
}

// CriticalInventory handles GET /api/critical-inventory.
func (h *CatalogHandler) CriticalInventory(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 10)
	if !ok {
		return
	}
	items, err := h.inventory.CriticalItems(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Critical inventory query failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, map[string]any{"critical_items": items})
}

// DashboardStats handles GET /api/dashboard-stats.
func (h *CatalogHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.DashboardStats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Dashboard stats query failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeSuccess(w, stats)
}
