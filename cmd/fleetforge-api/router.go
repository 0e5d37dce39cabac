// Package main provides the API router setup.
package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fleetforge/fleetforge/cmd/fleetforge-api/handlers"
	"github.com/fleetforge/fleetforge/internal/config"
	"github.com/fleetforge/fleetforge/internal/lookup"
	"github.com/fleetforge/fleetforge/internal/observability"
	"github.com/fleetforge/fleetforge/internal/storage"
)

// RouterDeps carries the shared dependencies for the API handlers.
type RouterDeps struct {
	DB       *sql.DB
	Vehicles *storage.VehicleRepository
	Specs    *storage.SpecificationRepository
	Lookup   *lookup.Service
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"fleetforge"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.DB.PingContext(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})

	vehicleHandler := handlers.NewVehicleHandler(logger, deps.Vehicles)
	specHandler := handlers.NewSpecificationHandler(logger, deps.Vehicles, deps.Specs, deps.Lookup)
	modelsHandler := handlers.NewModelsHandler(logger, deps.Lookup)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/vehicles", func(r chi.Router) {
			r.Post("/", vehicleHandler.Create)
			r.Get("/", vehicleHandler.List)

			r.Route("/{vehicleId}", func(r chi.Router) {
				r.Get("/", vehicleHandler.Get)
				r.Put("/", vehicleHandler.Update)
				r.Delete("/", vehicleHandler.Delete)

				r.Route("/specification", func(r chi.Router) {
					r.Get("/", specHandler.Get)
					r.Post("/", specHandler.Refresh)
				})
			})
		})

		r.Get("/models", modelsHandler.Search)
	})

	return r
}
