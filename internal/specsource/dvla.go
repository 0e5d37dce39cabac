package specsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fleetforge/fleetforge/internal/fleet"
	"github.com/fleetforge/fleetforge/internal/observability"
)

// DVLAAdapter sources specifications from the DVLA vehicle-enquiry service.
// A registration lookup is authoritative government data rather than a fuzzy
// text match, so this adapter outranks every other source. There are no
// variations to generate for a number plate: one request, hit or miss.
type DVLAAdapter struct {
	client  HTTPDoer
	logger  *observability.Logger
	baseURL string
	apiKey  string
	timeout time.Duration
}

// DVLAConfig holds DVLA vehicle-enquiry client settings.
type DVLAConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewDVLAAdapter creates the registration-lookup adapter.
func NewDVLAAdapter(client HTTPDoer, logger *observability.Logger, cfg DVLAConfig) *DVLAAdapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://driver-vehicle-licensing.api.gov.uk/vehicle-enquiry/v1"
	}
	return &DVLAAdapter{
		client:  client,
		logger:  logger.WithSource("dvla"),
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
	}
}

// Name implements Adapter.
func (a *DVLAAdapter) Name() string { return "dvla" }

// Supports reports true for any vehicle carrying a registration number.
func (a *DVLAAdapter) Supports(_ string, v fleet.Vehicle) bool {
	return v.Registration != ""
}

// Priority implements Adapter. Highest of all adapters.
func (a *DVLAAdapter) Priority() int { return 100 }

// FetchSpecifications implements Adapter.
func (a *DVLAAdapter) FetchSpecifications(ctx context.Context, v fleet.Vehicle) *fleet.Specification {
	if v.Registration == "" {
		return nil
	}

	if a.apiKey == "" {
		a.logger.Error().Msg("DVLA API key not configured")
		return nil
	}

	a.logger.Info().
		Str("registration", v.Registration).
		Msg("Fetching DVLA data for registration")

	data, err := a.vehicleByRegistration(ctx, v.Registration)
	if err != nil {
		a.logger.Error().Err(err).
			Str("registration", v.Registration).
			Msg("DVLA lookup failed")
		return nil
	}
	if len(data) == 0 {
		a.logger.Warn().
			Str("registration", v.Registration).
			Msg("No data returned from DVLA")
		return nil
	}

	spec := fleet.NewSpecification()

	// DVLA reports engine capacity in cc.
	if capacity, ok := data.str("engineCapacity"); ok {
		spec.Displacement = fleet.Str(capacity + " cc")
	}
	spec.Power = data.strPtr("enginePower")
	spec.FuelSystem = data.strPtr("fuelType")
	spec.Transmission = data.strPtr("transmission")

	// Keep the complete raw payload for traceability.
	for key, value := range data {
		spec.AddInfo(key, renderValue(value))
	}

	spec.ScrapedAt = time.Now()
	spec.SourceURL = "dvla"

	return spec
}

// SearchModels implements Adapter. DVLA has no models endpoint.
func (a *DVLAAdapter) SearchModels(_ context.Context, _, _ string) []string {
	return nil
}

// vehicleByRegistration issues the vehicle-enquiry request: a POST keyed by
// registration number, authenticated with the API key header.
func (a *DVLAAdapter) vehicleByRegistration(ctx context.Context, registration string) (payload, error) {
	timeout := a.timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqBody, err := json.Marshal(map[string]string{"registrationNumber": registration})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/vehicles", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, &statusError{Code: resp.StatusCode, Body: string(body)}
	}

	var data payload
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return data, nil
}

var _ Adapter = (*DVLAAdapter)(nil)
