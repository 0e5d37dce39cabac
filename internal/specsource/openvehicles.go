package specsource

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fleetforge/fleetforge/internal/fleet"
	"github.com/fleetforge/fleetforge/internal/match"
	"github.com/fleetforge/fleetforge/internal/observability"
)

// openVehiclesEndpoints maps vehicle class names to Open Vehicles API
// endpoint categories. EVs are served by the cars endpoint.
var openVehiclesEndpoints = map[string]string{
	"car":        "cars",
	"motorcycle": "motorcycles",
	"truck":      "trucks",
	"van":        "vans",
	"ev":         "cars",
}

// OpenVehiclesAdapter fetches specifications from the Open Vehicles API,
// a generic source covering cars, motorcycles, trucks and vans with deeply
// nested payloads.
type OpenVehiclesAdapter struct {
	client  HTTPDoer
	logger  *observability.Logger
	baseURL string
	apiKey  string
	timeout time.Duration
}

// OpenVehiclesConfig holds Open Vehicles client settings.
type OpenVehiclesConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewOpenVehiclesAdapter creates the generic vehicle adapter.
func NewOpenVehiclesAdapter(client HTTPDoer, logger *observability.Logger, cfg OpenVehiclesConfig) *OpenVehiclesAdapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openvehicles.com/v1"
	}
	return &OpenVehiclesAdapter{
		client:  client,
		logger:  logger.WithSource("open-vehicles"),
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
	}
}

// Name implements Adapter.
func (a *OpenVehiclesAdapter) Name() string { return "open-vehicles" }

// Supports reports true when the vehicle class maps to an endpoint category.
func (a *OpenVehiclesAdapter) Supports(vehicleType string, _ fleet.Vehicle) bool {
	_, ok := openVehiclesEndpoints[strings.ToLower(vehicleType)]
	return ok
}

// Priority implements Adapter. This source is more comprehensive than the
// car-specific adapter, so it sorts above it.
func (a *OpenVehiclesAdapter) Priority() int { return 90 }

// FetchSpecifications implements Adapter.
func (a *OpenVehiclesAdapter) FetchSpecifications(ctx context.Context, v fleet.Vehicle) *fleet.Specification {
	if v.Make == "" || v.Model == "" {
		return nil
	}

	if a.apiKey == "" {
		a.logger.Error().Msg("Open Vehicles key not configured")
		return nil
	}

	vehicleType := strings.ToLower(v.Class)
	endpoint, ok := openVehiclesEndpoints[vehicleType]
	if !ok {
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
		apiURL := a.baseURL + "/" + endpoint + "?" + params.Encode()

		a.logger.Info().
			Str("endpoint", endpoint).
			Str("make", v.Make).
			Str("model", modelVariant).
			Int("year", v.Year).
			Msg("Fetching specs from Open Vehicles")

		var raw json.RawMessage
		if err := getJSON(ctx, a.client, a.timeout, apiURL, a.headers(), &raw); err != nil {
			// A 4xx/5xx from this source just means "try the next variant".
			var se *statusError
			if errors.As(err, &se) {
				a.logger.Error().
					Int("status", se.Code).
					Str("endpoint", endpoint).
					Str("model", modelVariant).
					Msg("Open Vehicles returned error")
			} else {
				a.logger.Error().Err(err).
					Str("endpoint", endpoint).
					Str("model", modelVariant).
					Msg("Open Vehicles request failed")
			}
			continue
		}

		data, ok := decodeObjectOrArray(raw)
		if !ok {
			a.logger.Warn().
				Str("endpoint", endpoint).
				Str("model", modelVariant).
				Msg("Open Vehicles returned unexpected response shape")
			continue
		}

		spec := mapOpenVehiclesPayload(data, vehicleType)
		if spec.IsEmpty() {
			continue
		}
		spec.ScrapedAt = time.Now()
		spec.SourceURL = apiURL
		return spec
	}

	a.logger.Warn().
		Str("endpoint", endpoint).
		Str("make", v.Make).
		Str("model", v.Model).
		Int("year", v.Year).
		Strs("variations_tried", variations).
		Msg("No data found from Open Vehicles")

	return nil
}

// SearchModels implements Adapter. The source has no model listing endpoint.
func (a *OpenVehiclesAdapter) SearchModels(_ context.Context, _, _ string) []string {
	return nil
}

func (a *OpenVehiclesAdapter) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + a.apiKey}
}

// decodeObjectOrArray accepts either a bare object or a non-empty array of
// objects, taking the first element when an array.
func decodeObjectOrArray(raw json.RawMessage) (payload, bool) {
	var list []payload
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, false
		}
		return list[0], true
	}

	var obj payload
	if err := json.Unmarshal(raw, &obj); err == nil && len(obj) > 0 {
		return obj, true
	}

	return nil, false
}

func mapOpenVehiclesPayload(p payload, vehicleType string) *fleet.Specification {
	spec := fleet.NewSpecification()
	spec.AddInfo("vehicle_type", vehicleType)

	if engine, ok := p.nested("engine"); ok {
		if cylinders, ok := engine.str("cylinders"); ok {
			spec.EngineType = fleet.Str(cylinders + " cylinders")
		}
		if displacement, ok := engine.str("displacement"); ok {
			// Numeric displacements arrive unitless, litres by convention.
			if engine.isNumeric("displacement") {
				displacement += " L"
			}
			spec.Displacement = fleet.Str(displacement)
		}
		spec.FuelSystem = engine.strPtr("fuel_type")
		spec.Power = engine.strPtr("power")
		spec.Torque = engine.strPtr("torque")
	}

	if transmission, ok := p.nested("transmission"); ok {
		spec.Transmission = transmission.strPtr("type")
		if gears, ok := transmission.str("gears"); ok {
			spec.Gearbox = fleet.Str(gears + " speed")
		}
	}

	if drivetrain, ok := p.str("drivetrain"); ok {
		spec.AddInfo("drive", drivetrain)
	}

	if performance, ok := p.nested("performance"); ok {
		spec.TopSpeed = performance.strPtr("top_speed")
		if acceleration, ok := performance.str("acceleration"); ok {
			spec.AddInfo("acceleration_0_60", acceleration)
		}
	}

	if economy, ok := p.str("fuel_economy"); ok {
		spec.AddInfo("fuel_economy", economy)
	}

	if dimensions, ok := p.nested("dimensions"); ok {
		spec.Wheelbase = dimensions.strPtr("wheelbase")
		for _, key := range []string{"length", "width", "height"} {
			if value, ok := dimensions.str(key); ok {
				spec.AddInfo(key, value)
			}
		}
	}

	if weight, ok := p.nested("weight"); ok {
		spec.WetWeight = weight.strPtr("curb_weight")
	}

	if fuel, ok := p.nested("fuel"); ok {
		spec.FuelCapacity = fuel.strPtr("capacity")
	}

	// Keep the matched identity fields for reference.
	for _, key := range []string{"make", "model", "year", "class", "generation"} {
		if value, ok := p.str(key); ok {
			spec.AddInfo(key, value)
		}
	}

	return spec
}

var _ Adapter = (*OpenVehiclesAdapter)(nil)
