package handlers

import (
	"net/http"

	"github.com/fleetforge/fleetforge/internal/lookup"
	"github.com/fleetforge/fleetforge/internal/observability"
)

// ModelsHandler handles model-name autocomplete requests.
type ModelsHandler struct {
	logger *observability.Logger
	lookup *lookup.Service
}

// NewModelsHandler creates a new models handler.
func NewModelsHandler(logger *observability.Logger, lookupSvc *lookup.Service) *ModelsHandler {
	return &ModelsHandler{logger: logger, lookup: lookupSvc}
}

// Search handles GET /models?make=&q=&type=.
func (h *ModelsHandler) Search(w http.ResponseWriter, r *http.Request) {
	makeName := r.URL.Query().Get("make")
	if makeName == "" {
		writeError(w, http.StatusBadRequest, "make is required", "")
		return
	}

	vehicleType := r.URL.Query().Get("type")
	if vehicleType == "" {
		vehicleType = "motorcycle"
	}
	query := r.URL.Query().Get("q")

	models := h.lookup.SearchModels(r.Context(), vehicleType, makeName, query)
	if models == nil {
		models = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"make":   makeName,
		"models": models,
	})
}
