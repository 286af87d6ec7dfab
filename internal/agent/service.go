package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/retailplus/inventory-engine/internal/cache"
	"github.com/retailplus/inventory-engine/internal/observability"
	"github.com/retailplus/inventory-engine/internal/storage"
)

// DefaultDaysAhead is the forecast horizon used when the request omits one.
const DefaultDaysAhead = 30

// ModelClient generates completions for a prompt.
type ModelClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service runs the five retail optimization operations. Each operation
// loads store data, prompts the model, and normalizes the output into the
// kind's schema. Model failures degrade to deterministic fallback payloads
// and are never surfaced as errors; the only errors a caller sees come from
// the storage layer.
type Service struct {
	demand     *storage.DemandRepository
	inventory  *storage.InventoryRepository
	pricing    *storage.PricingRepository
	model      ModelClient
	cache      cache.Client
	normalizer *Normalizer
	fallbacks  *FallbackTable
	cacheTTL   time.Duration
	logger     *observability.Logger
}

// ServiceParams collects the dependencies of a Service.
type ServiceParams struct {
	Demand    *storage.DemandRepository
	Inventory *storage.InventoryRepository
	Pricing   *storage.PricingRepository
	Model     ModelClient
	Cache     cache.Client
	CacheTTL  time.Duration
	Logger    *observability.Logger
}

func NewService(p ServiceParams) *Service {
	fallbacks := NewFallbackTable()
	logger := p.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}
	ttl := p.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		demand:     p.Demand,
		inventory:  p.Inventory,
		pricing:    p.Pricing,
		model:      p.Model,
		cache:      p.Cache,
		normalizer: NewNormalizer(fallbacks),
		fallbacks:  fallbacks,
		cacheTTL:   ttl,
		logger:     logger,
	}
}

// Forecast predicts demand for a product at a store over daysAhead days.
func (s *Service) Forecast(ctx context.Context, target Target, daysAhead int) (*Result, error) {
	if daysAhead <= 0 {
		daysAhead = DefaultDaysAhead
	}
	summary, err := s.demand.Summarize(ctx, target.ProductID, target.StoreID)
	if err != nil {
		return nil, err
	}
	key := cache.Key(string(KindForecast), formatTarget(target), strconv.Itoa(daysAhead))
	return s.run(ctx, KindForecast, target, key, forecastPrompt(target, daysAhead, summary)), nil
}

// InventoryStatus analyzes stock levels for a product at a store.
func (s *Service) InventoryStatus(ctx context.Context, target Target) (*Result, error) {
	record, err := s.inventory.Get(ctx, target.ProductID, target.StoreID)
	if err != nil {
		return nil, err
	}
	key := cache.Key(string(KindInventory), formatTarget(target))
	return s.run(ctx, KindInventory, target, key, inventoryPrompt(target, record)), nil
}

// Pricing produces pricing recommendations for a product at a store.
func (s *Service) Pricing(ctx context.Context, target Target) (*Result, error) {
	record, err := s.pricing.Get(ctx, target.ProductID, target.StoreID)
	if err != nil {
		return nil, err
	}
	key := cache.Key(string(KindPricing), formatTarget(target))
	return s.run(ctx, KindPricing, target, key, pricingPrompt(target, record)), nil
}

// SupplyChain produces ordering and supplier recommendations.
func (s *Service) SupplyChain(ctx context.Context, target Target) (*Result, error) {
	record, err := s.inventory.Get(ctx, target.ProductID, target.StoreID)
	if err != nil {
		return nil, err
	}
	key := cache.Key(string(KindSupplyChain), formatTarget(target))
	return s.run(ctx, KindSupplyChain, target, key, supplyChainPrompt(target, record)), nil
}

// Optimize runs the four specialized operations and coordinates their
// results into a single optimization plan. A missing product or store fails
// the whole operation; individual model failures do not.
func (s *Service) Optimize(ctx context.Context, target Target) (*Result, error) {
	forecast, err := s.Forecast(ctx, target, DefaultDaysAhead)
	if err != nil {
		return nil, err
	}
	inventoryStatus, err := s.InventoryStatus(ctx, target)
	if err != nil {
		return nil, err
	}
	pricing, err := s.Pricing(ctx, target)
	if err != nil {
		return nil, err
	}
	supplyChain, err := s.SupplyChain(ctx, target)
	if err != nil {
		return nil, err
	}

	sections := map[string]any{
		"demand_forecast":              forecast.Fields,
		"inventory_status":             inventoryStatus.Fields,
		"pricing_recommendations":      pricing.Fields,
		"supply_chain_recommendations": supplyChain.Fields,
	}
	key := cache.Key(string(KindOptimize), formatTarget(target))
	return s.run(ctx, KindOptimize, target, key, optimizePrompt(target, sections)), nil
}

// run executes the model round-trip for one request: cache probe, generate,
// normalize, cache fill. Fallback results are never cached so a later
// request can still get a real model answer.
func (s *Service) run(ctx context.Context, kind Kind, target Target, key, prompt string) *Result {
	runID := uuid.New().String()
	start := time.Now()

	if cached := s.cacheProbe(ctx, key); cached != nil {
		s.logger.Debug().
			Str("run_id", runID).
			Str("kind", string(kind)).
			Str("cache_key", key).
			Msg("Serving cached agent result")
		return cached
	}

	var result Result
	raw, err := s.model.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn().
			Str("run_id", runID).
			Str("kind", string(kind)).
			Err(err).
			Msg("Model request failed, using fallback payload")
		result = s.normalizer.Fallback(kind, target)
	} else {
		result = s.normalizer.Normalize(raw, kind, target)
		if result.UsedFallback {
			s.logger.Warn().
				Str("run_id", runID).
				Str("kind", string(kind)).
				Msg("Model output unusable, using fallback payload")
		}
	}

	if !result.UsedFallback {
		s.cacheFill(ctx, key, &result)
	}

	s.logger.Info().
		Str("run_id", runID).
		Str("kind", string(kind)).
		Int64("product_id", target.ProductID).
		Int64("store_id", target.StoreID).
		Bool("used_fallback", result.UsedFallback).
		Dur("duration", time.Since(start)).
		Msg("Agent request completed")
	return &result
}

func (s *Service) cacheProbe(ctx context.Context, key string) *Result {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Str("cache_key", key).Err(err).Msg("Cache read failed")
		}
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	return &Result{Fields: fields}
}

func (s *Service) cacheFill(ctx context.Context, key string, result *Result) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(result.Fields)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn().Str("cache_key", key).Err(err).Msg("Cache write failed")
	}
}

func formatTarget(target Target) string {
	return fmt.Sprintf("%d:%d", target.ProductID, target.StoreID)
}
