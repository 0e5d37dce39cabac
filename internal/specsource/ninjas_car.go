package specsource

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/fleetforge/fleetforge/internal/fleet"
	"github.com/fleetforge/fleetforge/internal/match"
	"github.com/fleetforge/fleetforge/internal/observability"
)

// NinjasCarAdapter fetches car specifications from the API Ninjas cars
// endpoint. It tries model-name variations in order and takes the first
// result of the first variation that returns data.
type NinjasCarAdapter struct {
	client  HTTPDoer
	logger  *observability.Logger
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NewNinjasCarAdapter creates the car adapter.
func NewNinjasCarAdapter(client HTTPDoer, logger *observability.Logger, cfg NinjasConfig) *NinjasCarAdapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.api-ninjas.com/v1"
	}
	return &NinjasCarAdapter{
		client:  client,
		logger:  logger.WithSource("api-ninjas-cars"),
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
	}
}

// Name implements Adapter.
func (a *NinjasCarAdapter) Name() string { return "api-ninjas-cars" }

// Supports reports true for every vehicle type except motorcycles, which the
// dedicated motorcycle adapter handles.
func (a *NinjasCarAdapter) Supports(vehicleType string, _ fleet.Vehicle) bool {
	return !fleet.IsMotorcycle(vehicleType)
}

// Priority implements Adapter.
func (a *NinjasCarAdapter) Priority() int { return 85 }

// FetchSpecifications implements Adapter.
func (a *NinjasCarAdapter) FetchSpecifications(ctx context.Context, v fleet.Vehicle) *fleet.Specification {
	if v.Make == "" || v.Model == "" {
		return nil
	}

	if a.apiKey == "" {
		a.logger.Error().Msg("API Ninjas key not configured")
		return nil
	}

	variations := match.ModelVariations(v.Model)

	for _, modelVariant := range variations {
		params := url.Values{}
		params.Set("make", v.Make)
		params.Set("model", modelVariant)
		if v.Year > 0 {
			params.Set("year", strconv.Itoa(v.Year))
		}
		apiURL := a.baseURL + "/cars?" + params.Encode()

		a.logger.Info().
			Str("make", v.Make).
			Str("model", modelVariant).
			Int("year", v.Year).
			Msg("Fetching car specs from API Ninjas")

		var results []payload
		if err := getJSON(ctx, a.client, a.timeout, apiURL, map[string]string{"X-Api-Key": a.apiKey}, &results); err != nil {
			a.logger.Error().Err(err).
				Str("make", v.Make).
				Str("model", modelVariant).
				Msg("Car request failed")
			continue
		}

		if len(results) == 0 {
			continue
		}

		spec := mapCarPayload(results[0])
		if spec.IsEmpty() {
			continue
		}
		spec.ScrapedAt = time.Now()
		spec.SourceURL = apiURL
		return spec
	}

	a.logger.Warn().
		Str("make", v.Make).
		Str("model", v.Model).
		Int("year", v.Year).
		Strs("variations_tried", variations).
		Msg("No car data found")

	return nil
}

// SearchModels implements Adapter. The cars endpoint has no separate model
// listing, so this source contributes nothing to autocomplete.
func (a *NinjasCarAdapter) SearchModels(_ context.Context, _, _ string) []string {
	return nil
}

func mapCarPayload(p payload) *fleet.Specification {
	spec := fleet.NewSpecification()

	if cylinders, ok := p.str("cylinders"); ok {
		spec.EngineType = fleet.Str(cylinders + " cylinders")
	}
	if displacement, ok := p.str("displacement"); ok {
		spec.Displacement = fleet.Str(displacement + " L")
	}
	spec.FuelSystem = p.strPtr("fuel_type")
	spec.Transmission = p.strPtr("transmission")

	if drive, ok := p.str("drive"); ok {
		spec.AddInfo("drive", drive)
	}
	if combined, ok := p.str("combination_mpg"); ok {
		spec.AddInfo("fuel_economy_combined", combined+" MPG")
	}
	if city, ok := p.str("city_mpg"); ok {
		spec.AddInfo("fuel_economy_city", city+" MPG")
	}
	if highway, ok := p.str("highway_mpg"); ok {
		spec.AddInfo("fuel_economy_highway", highway+" MPG")
	}

	// Keep the matched identity fields for reference.
	for _, key := range []string{"make", "model", "year", "class"} {
		if value, ok := p.str(key); ok {
			spec.AddInfo(key, value)
		}
	}

	return spec
}

var _ Adapter = (*NinjasCarAdapter)(nil)
