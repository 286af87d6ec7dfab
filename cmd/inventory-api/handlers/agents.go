package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/retailplus/inventory-engine/internal/agent"
	"github.com/retailplus/inventory-engine/internal/observability"
	"github.com/retailplus/inventory-engine/internal/storage"
)

// AgentHandler serves the model-backed optimization endpoints.
type AgentHandler struct {
	logger  *observability.Logger
	service *agent.Service
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(logger *observability.Logger, service *agent.Service) *AgentHandler {
	return &AgentHandler{logger: logger, service: service}
}

// AgentRequestDTO is the shared request body for agent endpoints.
type AgentRequestDTO struct {
	ProductID int64 `json:"product_id"`
	StoreID   int64 `json:"store_id"`
	DaysAhead int   `json:"days_ahead,omitempty"`
}

func (h *AgentHandler) parseRequest(w http.ResponseWriter, r *http.Request) (*AgentRequestDTO, bool) {
	var req AgentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "product_id must be a positive integer")
		return nil, false
	}
	if req.StoreID <= 0 {
		writeError(w, http.StatusBadRequest, "store_id must be a positive integer")
		return nil, false
	}
	if req.DaysAhead < 0 {
		writeError(w, http.StatusBadRequest, "days_ahead must not be negative")
		return nil, false
	}
	return &req, true
}

// writeResult renders an agent result under the given payload key,
// downgrading to a warning envelope when the fallback table supplied the
// values.
func (h *AgentHandler) writeResult(w http.ResponseWriter, req *AgentRequestDTO, payloadKey string, result *agent.Result, extra map[string]any) {
	data := map[string]any{
		"product_id": req.ProductID,
		"store_id":   req.StoreID,
		payloadKey:   result.Fields,
	}
	for k, v := range extra {
		data[k] = v
	}
	if result.UsedFallback {
		writeWarning(w, fallbackMessage, data)
		return
	}
	writeSuccess(w, data)
}

func (h *AgentHandler) handleServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no data found for the specified product and store")
		return
	}
	h.logger.Error().Err(err).Msg("Agent request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

// Forecast handles POST /api/forecast.
func (h *AgentHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	daysAhead := req.DaysAhead
	if daysAhead == 0 {
		daysAhead = agent.DefaultDaysAhead
	}

	result, err := h.service.Forecast(r.Context(), agent.Target{ProductID: req.ProductID, StoreID: req.StoreID}, daysAhead)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeResult(w, req, "forecast", result, map[string]any{"days_ahead": daysAhead})
}

// InventoryStatus handles POST /api/inventory-status.
func (h *AgentHandler) InventoryStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	result, err := h.service.InventoryStatus(r.Context(), agent.Target{ProductID: req.ProductID, StoreID: req.StoreID})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeResult(w, req, "inventory", result, nil)
}

// Pricing handles POST /api/pricing.
func (h *AgentHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	result, err := h.service.Pricing(r.Context(), agent.Target{ProductID: req.ProductID, StoreID: req.StoreID})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeResult(w, req, "pricing", result, nil)
}

// SupplyChain handles POST /api/supply-chain.
func (h *AgentHandler) SupplyChain(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	result, err := h.service.SupplyChain(r.Context(), agent.Target{ProductID: req.ProductID, StoreID: req.StoreID})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeResult(w, req, "supply_chain", result, nil)
}

// Optimize handles POST /api/optimize.
func (h *AgentHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	result, err := h.service.Optimize(r.Context(), agent.Target{ProductID: req.ProductID, StoreID: req.StoreID})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeResult(w, req, "optimization_plan", result, nil)
}
