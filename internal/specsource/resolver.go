package specsource

import (
	"context"
	"sort"

	"github.com/fleetforge/fleetforge/internal/fleet"
	"github.com/fleetforge/fleetforge/internal/observability"
)

// Resolver coordinates the registered adapters: it filters by applicability,
// orders by descending priority, and returns the first adapter's non-nil
// specification. Adapters are not merged; a specification carries exactly
// one source's data.
type Resolver struct {
	logger   *observability.Logger
	adapters []Adapter
}

// NewResolver creates a resolver with no adapters registered.
func NewResolver(logger *observability.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Register adds an adapter. Adapters are kept sorted by priority, highest
// first; registration order breaks ties.
func (r *Resolver) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
	sort.SliceStable(r.adapters, func(i, j int) bool {
		return r.adapters[i].Priority() > r.adapters[j].Priority()
	})
}

// Adapters returns the registered adapters in dispatch order.
func (r *Resolver) Adapters() []Adapter {
	return r.adapters
}

// Resolve tries each applicable adapter in priority order and returns the
// first non-nil specification, or nil when every source comes up empty.
func (r *Resolver) Resolve(ctx context.Context, v fleet.Vehicle) *fleet.Specification {
	r.logger.Info().
		Str("vehicle_type", v.Class).
		Str("make", v.Make).
		Str("model", v.Model).
		Int("year", v.Year).
		Int("adapter_count", len(r.adapters)).
		Msg("Resolving vehicle specification")

	if len(r.adapters) == 0 {
		r.logger.Error().Msg("No adapters registered")
		return nil
	}

	for _, adapter := range r.adapters {
		if !adapter.Supports(v.Class, v) {
			r.logger.Debug().
				Str("adapter", adapter.Name()).
				Str("vehicle_type", v.Class).
				Msg("Adapter does not support vehicle")
			continue
		}

		r.logger.Info().
			Str("adapter", adapter.Name()).
			Int("priority", adapter.Priority()).
			Msg("Trying adapter")

		spec := adapter.FetchSpecifications(ctx, v)
		if spec == nil {
			r.logger.Warn().
				Str("adapter", adapter.Name()).
				Msg("Adapter returned no match")
			continue
		}

		r.logger.Info().
			Str("adapter", adapter.Name()).
			Str("source_url", spec.SourceURL).
			Msg("Specification resolved")
		return spec
	}

	r.logger.Warn().
		Str("vehicle_type", v.Class).
		Str("make", v.Make).
		Str("model", v.Model).
		Msg("No adapter could fetch specifications")

	return nil
}

// SearchModels asks each applicable adapter for model names and returns the
// first non-empty list.
func (r *Resolver) SearchModels(ctx context.Context, v fleet.Vehicle, make, model string) []string {
	for _, adapter := range r.adapters {
		if !adapter.Supports(v.Class, v) {
			continue
		}

		models := adapter.SearchModels(ctx, make, model)
		if len(models) > 0 {
			r.logger.Info().
				Str("adapter", adapter.Name()).
				Str("make", make).
				Int("count", len(models)).
				Msg("Found models")
			return models
		}
	}
	return nil
}
