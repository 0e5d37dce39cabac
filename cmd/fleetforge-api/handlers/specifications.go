package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/fleetforge/fleetforge/internal/fleet"
	"github.com/fleetforge/fleetforge/internal/lookup"
	"github.com/fleetforge/fleetforge/internal/observability"
	"github.com/fleetforge/fleetforge/internal/storage"
)

// SpecificationHandler handles specification lookup and retrieval requests.
type SpecificationHandler struct {
	logger   *observability.Logger
	vehicles *storage.VehicleRepository
	specs    *storage.SpecificationRepository
	lookup   *lookup.Service
}

// NewSpecificationHandler creates a new specification handler.
func NewSpecificationHandler(logger *observability.Logger, vehicles *storage.VehicleRepository, specs *storage.SpecificationRepository, lookupSvc *lookup.Service) *SpecificationHandler {
	return &SpecificationHandler{
		logger:   logger,
		vehicles: vehicles,
		specs:    specs,
		lookup:   lookupSvc,
	}
}

// SpecificationDTO represents a resolved specification.
type SpecificationDTO struct {
	Fields         map[string]string `json:"fields"`
	AdditionalInfo map[string]string `json:"additionalInfo,omitempty"`
	ScrapedAt      string            `json:"scrapedAt"`
	SourceURL      string            `json:"sourceUrl,omitempty"`
}

// Get handles GET /vehicles/{vehicleId}/specification.
func (h *SpecificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(w, r)
	if !ok {
		return
	}

	row, err := h.specs.GetByVehicle(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no specification stored for vehicle", "")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load specification")
		writeError(w, http.StatusInternalServerError, "get failed", err.Error())
		return
	}

	spec, err := lookup.FromRow(row)
	if err != nil {
		h.logger.Error().Err(err).Msg("Stored specification is corrupt")
		writeError(w, http.StatusInternalServerError, "get failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toSpecificationDTO(spec))
}

// Refresh handles POST /vehicles/{vehicleId}/specification: it runs a fresh
// lookup against the upstream sources and stores the result.
func (h *SpecificationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(w, r)
	if !ok {
		return
	}

	v, err := h.vehicles.GetByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "vehicle not found", "")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load vehicle")
		writeError(w, http.StatusInternalServerError, "lookup failed", err.Error())
		return
	}

	spec, err := h.lookup.Lookup(r.Context(), v.ID, fleet.Vehicle{
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		Registration: v.Registration,
		Class:        v.Class,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to persist specification")
		writeError(w, http.StatusInternalServerError, "lookup failed", err.Error())
		return
	}
	if spec == nil {
		// No source had a match. The vehicle stays usable without one.
		writeError(w, http.StatusNotFound, "no specification found for vehicle", "")
		return
	}

	writeJSON(w, http.StatusOK, toSpecificationDTO(spec))
}

func toSpecificationDTO(spec *fleet.Specification) SpecificationDTO {
	fields := map[string]string{}
	for _, f := range spec.Fields() {
		fields[f.Name] = f.Value
	}
	return SpecificationDTO{
		Fields:         fields,
		AdditionalInfo: spec.AdditionalInfo,
		ScrapedAt:      spec.ScrapedAt.Format(time.RFC3339),
		SourceURL:      spec.SourceURL,
	}
}
