package specsource

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fleetforge/fleetforge/internal/fleet"
	"github.com/fleetforge/fleetforge/internal/match"
	"github.com/fleetforge/fleetforge/internal/observability"
)

// matchThreshold is the minimum similarity score at which a fuzzy candidate
// is accepted. Chosen empirically: below it, candidates are unrelated models
// rather than naming-convention drift. The boundary is inclusive.
const matchThreshold = 40.0

// NinjasMotorcycleAdapter fetches motorcycle specifications from the
// API Ninjas motorcycles endpoint. It carries the most elaborate search
// strategy of all adapters: make variants crossed with model variants, then
// an all-models-for-make/year fetch ranked by similarity, then the same at
// nearby years to absorb off-by-one model-year conventions between sources.
type NinjasMotorcycleAdapter struct {
	client  HTTPDoer
	logger  *observability.Logger
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NinjasConfig holds API Ninjas client settings. Cars and motorcycles share
// one account key.
type NinjasConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewNinjasMotorcycleAdapter creates the motorcycle adapter.
func NewNinjasMotorcycleAdapter(client HTTPDoer, logger *observability.Logger, cfg NinjasConfig) *NinjasMotorcycleAdapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.api-ninjas.com/v1"
	}
	return &NinjasMotorcycleAdapter{
		client:  client,
		logger:  logger.WithSource("api-ninjas-motorcycles"),
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
	}
}

// Name implements Adapter.
func (a *NinjasMotorcycleAdapter) Name() string { return "api-ninjas-motorcycles" }

// Supports reports true for motorcycles only.
func (a *NinjasMotorcycleAdapter) Supports(vehicleType string, _ fleet.Vehicle) bool {
	return fleet.IsMotorcycle(vehicleType)
}

// Priority implements Adapter. Motorcycle data from this source is more
// complete than the generic car endpoint, so it sorts above the car adapter.
func (a *NinjasMotorcycleAdapter) Priority() int { return 90 }

// FetchSpecifications implements Adapter.
func (a *NinjasMotorcycleAdapter) FetchSpecifications(ctx context.Context, v fleet.Vehicle) *fleet.Specification {
	if v.Make == "" || v.Model == "" {
		return nil
	}

	if a.apiKey == "" {
		a.logger.Error().Msg("API Ninjas key not configured")
		return nil
	}

	makeVariations := match.MakeVariations(v.Make)
	modelVariations := match.ModelVariations(v.Model)

	for _, makeVariant := range makeVariations {
		// Exact (make, model, year) triples are cheapest to validate and most
		// likely correct, so the full cross product goes first.
		for _, modelVariant := range modelVariations {
			if spec := a.tryFetch(ctx, makeVariant, modelVariant, v.Year); spec != nil {
				return spec
			}
		}

		if v.Year == 0 {
			continue
		}

		// Broaden to every model this source lists for the make and year and
		// rank by model-name similarity.
		if spec := a.fetchBestForMakeYear(ctx, makeVariant, v.Year, v.Make, v.Model); spec != nil {
			return spec
		}

		nearbyYears := []int{v.Year + 1, v.Year - 1, v.Year + 2, v.Year - 2}
		a.logger.Info().
			Int("original_year", v.Year).
			Ints("nearby_years", nearbyYears).
			Msg("Trying nearby years")

		for _, year := range nearbyYears {
			if spec := a.fetchBestForMakeYear(ctx, makeVariant, year, v.Make, v.Model); spec != nil {
				a.logger.Info().
					Int("original_year", v.Year).
					Int("matched_year", year).
					Str("original_model", v.Model).
					Msg("Found match using nearby year")
				return spec
			}
		}
	}

	a.logger.Warn().
		Str("original_make", v.Make).
		Str("original_model", v.Model).
		Int("year", v.Year).
		Int("make_variations_tried", len(makeVariations)).
		Int("model_variations_tried", len(modelVariations)).
		Msg("No motorcycle data found after trying all variations")

	return nil
}

// tryFetch issues one direct request for a make/model/year combination and
// maps the first result. Any failure is a no-match.
func (a *NinjasMotorcycleAdapter) tryFetch(ctx context.Context, makeVariant, modelVariant string, year int) *fleet.Specification {
	apiURL := a.motorcyclesURL(makeVariant, modelVariant, year)

	a.logger.Info().
		Str("make", makeVariant).
		Str("model", modelVariant).
		Int("year", year).
		Str("url", apiURL).
		Msg("Trying API Ninjas with variation")

	var results []payload
	if err := getJSON(ctx, a.client, a.timeout, apiURL, a.headers(), &results); err != nil {
		a.logger.Error().Err(err).
			Str("make", makeVariant).
			Str("model", modelVariant).
			Msg("Motorcycle request failed")
		return nil
	}

	if len(results) == 0 {
		return nil
	}

	a.logger.Info().
		Str("make", makeVariant).
		Str("model", modelVariant).
		Int("response_count", len(results)).
		Msg("API Ninjas found match")

	spec := mapMotorcyclePayload(results[0])
	if spec.IsEmpty() {
		return nil
	}
	spec.ScrapedAt = time.Now()
	spec.SourceURL = apiURL
	return spec
}

// fetchBestForMakeYear fetches every model the source lists for a make/year
// pair, excludes candidates whose reported make does not contain the expected
// make, ranks the rest by similarity to the target model name, and accepts
// the best only at or above matchThreshold.
func (a *NinjasMotorcycleAdapter) fetchBestForMakeYear(ctx context.Context, makeVariant string, year int, expectedMake, targetModel string) *fleet.Specification {
	apiURL := a.motorcyclesURL(makeVariant, "", year)

	var results []payload
	if err := getJSON(ctx, a.client, a.timeout, apiURL, a.headers(), &results); err != nil {
		a.logger.Error().Err(err).
			Str("make", makeVariant).
			Int("year", year).
			Msg("Make/year batch request failed")
		return nil
	}

	best := a.findBestModelMatch(targetModel, results, expectedMake)
	if best == nil {
		return nil
	}

	spec := mapMotorcyclePayload(best)
	if spec.IsEmpty() {
		return nil
	}
	spec.ScrapedAt = time.Now()
	spec.SourceURL = apiURL

	matched, _ := best.str("model")
	a.logger.Info().
		Str("original_model", targetModel).
		Str("matched_model", matched).
		Float64("similarity_score", match.Score(targetModel, matched)).
		Msg("Found best match using fuzzy matching")

	return spec
}

// findBestModelMatch picks the highest-scoring candidate from a result batch.
// Candidates under a mismatched make are excluded before scoring; this
// filters out bad upstream rows like a "620 Duke" listed under Kawasaki.
func (a *NinjasMotorcycleAdapter) findBestModelMatch(targetModel string, results []payload, expectedMake string) payload {
	var best payload
	bestScore := 0.0

	for _, result := range results {
		apiModel, _ := result.str("model")
		apiMake, _ := result.str("make")

		if !strings.Contains(strings.ToLower(apiMake), strings.ToLower(expectedMake)) {
			a.logger.Debug().
				Str("api_make", apiMake).
				Str("expected_make", expectedMake).
				Str("model", apiModel).
				Msg("Skipping result due to make mismatch")
			continue
		}

		score := match.Score(targetModel, apiModel)

		a.logger.Debug().
			Str("target", targetModel).
			Str("api_model", apiModel).
			Float64("similarity", score).
			Msg("Comparing models")

		if score > bestScore {
			bestScore = score
			best = result
		}
	}

	accepted := bestScore >= matchThreshold
	a.logger.Info().
		Float64("score", bestScore).
		Bool("accepted", accepted).
		Msg("Best match result")

	if !accepted {
		return nil
	}
	return best
}

// SearchModels lists model names for a make, optionally filtered by a
// substring. Missing credentials or transport failures yield an empty list.
func (a *NinjasMotorcycleAdapter) SearchModels(ctx context.Context, make, model string) []string {
	if a.apiKey == "" {
		a.logger.Error().Msg("API Ninjas key not configured")
		return nil
	}

	apiURL := a.baseURL + "/motorcyclemodels?make=" + url.QueryEscape(make)

	var models []string
	if err := getJSON(ctx, a.client, a.timeout, apiURL, a.headers(), &models); err != nil {
		a.logger.Error().Err(err).Str("make", make).Msg("Failed to search models")
		return nil
	}

	if model == "" {
		return models
	}

	var filtered []string
	for _, name := range models {
		if strings.Contains(strings.ToLower(name), strings.ToLower(model)) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

func (a *NinjasMotorcycleAdapter) headers() map[string]string {
	return map[string]string{"X-Api-Key": a.apiKey}
}

func (a *NinjasMotorcycleAdapter) motorcyclesURL(makeVariant, modelVariant string, year int) string {
	params := url.Values{}
	params.Set("make", makeVariant)
	if modelVariant != "" {
		params.Set("model", modelVariant)
	}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	return a.baseURL + "/motorcycles?" + params.Encode()
}

// motorcycleFields maps API Ninjas motorcycle payload keys to specification
// fields. Everything else lands in the additional-info bag.
var motorcycleFields = map[string]bool{
	"engine": true, "displacement": true, "power": true, "torque": true,
	"compression": true, "bore_stroke": true, "fuel_system": true,
	"cooling": true, "gearbox": true, "transmission": true, "clutch": true,
	"frame": true, "front_suspension": true, "rear_suspension": true,
	"front_brakes": true, "rear_brakes": true, "front_tire": true,
	"rear_tire": true, "front_wheel_travel": true, "rear_wheel_travel": true,
	"wheelbase": true, "seat_height": true, "ground_clearance": true,
	"dry_weight": true, "wet_weight": true, "fuel_capacity": true,
	"top_speed": true,
}

func mapMotorcyclePayload(p payload) *fleet.Specification {
	spec := fleet.NewSpecification()

	spec.EngineType = p.strPtr("engine")
	spec.Displacement = p.strPtr("displacement")
	spec.Power = p.strPtr("power")
	spec.Torque = p.strPtr("torque")
	spec.Compression = p.strPtr("compression")
	spec.BoreStroke = p.strPtr("bore_stroke")
	spec.FuelSystem = p.strPtr("fuel_system")
	spec.Cooling = p.strPtr("cooling")
	spec.Gearbox = p.strPtr("gearbox")
	spec.Transmission = p.strPtr("transmission")
	spec.Clutch = p.strPtr("clutch")
	spec.Frame = p.strPtr("frame")
	spec.FrontSuspension = p.strPtr("front_suspension")
	spec.RearSuspension = p.strPtr("rear_suspension")
	spec.FrontBrakes = p.strPtr("front_brakes")
	spec.RearBrakes = p.strPtr("rear_brakes")
	spec.FrontTyre = p.strPtr("front_tire")
	spec.RearTyre = p.strPtr("rear_tire")
	spec.FrontWheelTravel = p.strPtr("front_wheel_travel")
	spec.RearWheelTravel = p.strPtr("rear_wheel_travel")
	spec.Wheelbase = p.strPtr("wheelbase")
	spec.SeatHeight = p.strPtr("seat_height")
	spec.GroundClearance = p.strPtr("ground_clearance")
	spec.DryWeight = p.strPtr("dry_weight")
	spec.WetWeight = p.strPtr("wet_weight")
	spec.FuelCapacity = p.strPtr("fuel_capacity")
	spec.TopSpeed = p.strPtr("top_speed")

	if category, ok := p.str("type"); ok {
		spec.AddInfo("category", category)
	}
	// Keep the matched upstream model name for reference.
	if model, ok := p.str("model"); ok {
		spec.AddInfo("api_model_name", model)
	}

	for key, value := range p {
		if motorcycleFields[key] || key == "make" || key == "model" || key == "year" || key == "type" {
			continue
		}
		spec.AddInfo(key, renderValue(value))
	}

	return spec
}

var _ Adapter = (*NinjasMotorcycleAdapter)(nil)
