// Package handlers provides HTTP handlers for the FleetForge API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fleetforge/fleetforge/internal/observability"
	"github.com/fleetforge/fleetforge/internal/storage"
)

// VehicleHandler handles vehicle CRUD requests.
type VehicleHandler struct {
	logger   *observability.Logger
	vehicles *storage.VehicleRepository
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(logger *observability.Logger, vehicles *storage.VehicleRepository) *VehicleHandler {
	return &VehicleHandler{logger: logger, vehicles: vehicles}
}

// VehicleDTO represents a vehicle in API requests and responses.
type VehicleDTO struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year,omitempty"`
	Registration string `json:"registration,omitempty"`
	Class        string `json:"class,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// Create handles POST /vehicles.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dto VehicleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if dto.Name == "" || dto.Make == "" || dto.Model == "" {
		writeError(w, http.StatusBadRequest, "name, make and model are required", "")
		return
	}

	v := &storage.Vehicle{
		Name:         dto.Name,
		Make:         dto.Make,
		Model:        dto.Model,
		Year:         dto.Year,
		Registration: dto.Registration,
		Class:        dto.Class,
	}
	if err := h.vehicles.Create(r.Context(), v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to create vehicle")
		writeError(w, http.StatusInternalServerError, "create failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toVehicleDTO(v))
}

// List handles GET /vehicles.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list vehicles")
		writeError(w, http.StatusInternalServerError, "list failed", err.Error())
		return
	}

	dtos := make([]VehicleDTO, 0, len(vehicles))
	for _, v := range vehicles {
		dtos = append(dtos, toVehicleDTO(v))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Get handles GET /vehicles/{vehicleId}.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
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
		h.logger.Error().Err(err).Msg("Failed to get vehicle")
		writeError(w, http.StatusInternalServerError, "get failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toVehicleDTO(v))
}

// Update handles PUT /vehicles/{vehicleId}.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(w, r)
	if !ok {
		return
	}

	var dto VehicleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	v := &storage.Vehicle{
		ID:           id,
		Name:         dto.Name,
		Make:         dto.Make,
		Model:        dto.Model,
		Year:         dto.Year,
		Registration: dto.Registration,
		Class:        dto.Class,
	}
	err := h.vehicles.Update(r.Context(), v)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "vehicle not found", "")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to update vehicle")
		writeError(w, http.StatusInternalServerError, "update failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toVehicleDTO(v))
}

// Delete handles DELETE /vehicles/{vehicleId}.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(w, r)
	if !ok {
		return
	}

	err := h.vehicles.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "vehicle not found", "")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to delete vehicle")
		writeError(w, http.StatusInternalServerError, "delete failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toVehicleDTO(v *storage.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:           v.ID.String(),
		Name:         v.Name,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		Registration: v.Registration,
		Class:        v.Class,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    v.UpdatedAt.Format(time.RFC3339),
	}
}

func vehicleID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "vehicleId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle id", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{"error": message}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}
