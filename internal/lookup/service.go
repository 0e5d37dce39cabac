// Package lookup wires the specification resolver to the cache and the
// database: cached results are served without touching the upstream sources,
// fresh results are persisted and cached.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fleetforge/fleetforge/internal/cache"
	"github.com/fleetforge/fleetforge/internal/fleet"
	"github.com/fleetforge/fleetforge/internal/observability"
	"github.com/fleetforge/fleetforge/internal/specsource"
	"github.com/fleetforge/fleetforge/internal/storage"
)

// Service performs specification lookups for fleet vehicles.
type Service struct {
	logger   *observability.Logger
	resolver *specsource.Resolver
	cache    cache.Client
	specs    *storage.SpecificationRepository
	cacheTTL time.Duration
}

// Config holds lookup service settings.
type Config struct {
	CacheResults bool
	CacheTTL     time.Duration
}

// NewService creates a lookup service. The cache client may be nil to
// disable caching; the repository may be nil to skip persistence (used by
// the CLI, which only prints results).
func NewService(logger *observability.Logger, resolver *specsource.Resolver, cacheClient cache.Client, specs *storage.SpecificationRepository, cfg Config) *Service {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if !cfg.CacheResults {
		cacheClient = nil
	}
	return &Service{
		logger:   logger,
		resolver: resolver,
		cache:    cacheClient,
		specs:    specs,
		cacheTTL: ttl,
	}
}

// Lookup resolves a specification for the vehicle. A nil result with a nil
// error means no source had a match; the caller proceeds without one.
func (s *Service) Lookup(ctx context.Context, vehicleID uuid.UUID, v fleet.Vehicle) (*fleet.Specification, error) {
	key := s.cacheKey(v)

	if spec := s.fromCache(ctx, key); spec != nil {
		s.logger.Debug().Str("key", key).Msg("Lookup served from cache")
		if err := s.persist(ctx, vehicleID, spec); err != nil {
			return nil, err
		}
		return spec, nil
	}

	spec := s.resolver.Resolve(ctx, v)
	if spec == nil {
		return nil, nil
	}

	if err := s.persist(ctx, vehicleID, spec); err != nil {
		return nil, err
	}

	s.toCache(ctx, key, spec)

	return spec, nil
}

// SearchModels lists candidate model names for autocomplete.
func (s *Service) SearchModels(ctx context.Context, vehicleType, make, model string) []string {
	return s.resolver.SearchModels(ctx, fleet.Vehicle{Class: vehicleType, Make: make}, make, model)
}

func (s *Service) cacheKey(v fleet.Vehicle) string {
	if v.Registration != "" {
		return cache.RegistrationKey(v.Registration)
	}
	return cache.SpecKey(v.Make, v.Model, v.Year)
}

func (s *Service) fromCache(ctx context.Context, key string) *fleet.Specification {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return nil
	}

	var spec fleet.Specification
	if err := json.Unmarshal(data, &spec); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cached specification is corrupt")
		return nil
	}
	return &spec
}

func (s *Service) toCache(ctx context.Context, key string, spec *fleet.Specification) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(spec)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode specification for cache")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (s *Service) persist(ctx context.Context, vehicleID uuid.UUID, spec *fleet.Specification) error {
	if s.specs == nil || vehicleID == uuid.Nil {
		return nil
	}

	row, err := toRow(vehicleID, spec)
	if err != nil {
		return err
	}
	return s.specs.Create(ctx, row)
}

// toRow converts a resolved specification into its storage row.
func toRow(vehicleID uuid.UUID, spec *fleet.Specification) (*storage.Specification, error) {
	info := spec.AdditionalInfo
	if info == nil {
		info = map[string]string{}
	}
	infoJSON, err := json.Marshal(info)
	if err != nil {
		return nil, err
	}

	return &storage.Specification{
		VehicleID:        vehicleID,
		EngineType:       spec.EngineType,
		Displacement:     spec.Displacement,
		Power:            spec.Power,
		Torque:           spec.Torque,
		Compression:      spec.Compression,
		BoreStroke:       spec.BoreStroke,
		FuelSystem:       spec.FuelSystem,
		Cooling:          spec.Cooling,
		Gearbox:          spec.Gearbox,
		Transmission:     spec.Transmission,
		Clutch:           spec.Clutch,
		Frame:            spec.Frame,
		FrontSuspension:  spec.FrontSuspension,
		RearSuspension:   spec.RearSuspension,
		FrontBrakes:      spec.FrontBrakes,
		RearBrakes:       spec.RearBrakes,
		FrontTyre:        spec.FrontTyre,
		RearTyre:         spec.RearTyre,
		FrontWheelTravel: spec.FrontWheelTravel,
		RearWheelTravel:  spec.RearWheelTravel,
		Wheelbase:        spec.Wheelbase,
		SeatHeight:       spec.SeatHeight,
		GroundClearance:  spec.GroundClearance,
		DryWeight:        spec.DryWeight,
		WetWeight:        spec.WetWeight,
		FuelCapacity:     spec.FuelCapacity,
		TopSpeed:         spec.TopSpeed,
		AdditionalInfo:   string(infoJSON),
		ScrapedAt:        spec.ScrapedAt,
		SourceURL:        spec.SourceURL,
	}, nil
}

// FromRow converts a storage row back into the domain specification.
func FromRow(row *storage.Specification) (*fleet.Specification, error) {
	info := map[string]string{}
	if row.AdditionalInfo != "" {
		if err := json.Unmarshal([]byte(row.AdditionalInfo), &info); err != nil {
			return nil, err
		}
	}

	return &fleet.Specification{
		EngineType:       row.EngineType,
		Displacement:     row.Displacement,
		Power:            row.Power,
		Torque:           row.Torque,
		Compression:      row.Compression,
		BoreStroke:       row.BoreStroke,
		FuelSystem:       row.FuelSystem,
		Cooling:          row.Cooling,
		Gearbox:          row.Gearbox,
		Transmission:     row.Transmission,
		Clutch:           row.Clutch,
		Frame:            row.Frame,
		FrontSuspension:  row.FrontSuspension,
		RearSuspension:   row.RearSuspension,
		FrontBrakes:      row.FrontBrakes,
		RearBrakes:       row.RearBrakes,
		FrontTyre:        row.FrontTyre,
		RearTyre:         row.RearTyre,
		FrontWheelTravel: row.FrontWheelTravel,
		RearWheelTravel:  row.RearWheelTravel,
		Wheelbase:        row.Wheelbase,
		SeatHeight:       row.SeatHeight,
		GroundClearance:  row.GroundClearance,
		DryWeight:        row.DryWeight,
		WetWeight:        row.WetWeight,
		FuelCapacity:     row.FuelCapacity,
		TopSpeed:         row.TopSpeed,
		AdditionalInfo:   info,
		ScrapedAt:        row.ScrapedAt,
		SourceURL:        row.SourceURL,
	}, nil
}
