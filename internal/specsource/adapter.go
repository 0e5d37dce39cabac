// Package specsource implements the pluggable specification sources and the
// resolver that tries them in priority order. Each adapter wraps one upstream
// data source and degrades every failure mode to a no-match: a nil
// Specification. Errors never escape FetchSpecifications so a flaky upstream
// can never block the caller.
package specsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fleetforge/fleetforge/internal/fleet"
)

// Adapter is one pluggable source of vehicle specification data.
type Adapter interface {
	// Name identifies the source in logs and provenance metadata.
	Name() string

	// Supports reports whether this adapter can handle the vehicle.
	Supports(vehicleType string, v fleet.Vehicle) bool

	// Priority orders adapters, higher first. Values are 0-100 and only the
	// relative order is contractual.
	Priority() int

	// FetchSpecifications resolves the vehicle into a specification, or nil
	// when the source has no match. It never returns an error: configuration,
	// transport and parse failures are logged and folded into nil.
	FetchSpecifications(ctx context.Context, v fleet.Vehicle) *fleet.Specification

	// SearchModels lists candidate model names for a make, optionally
	// filtered by a substring. Sources without a models endpoint return nil.
	SearchModels(ctx context.Context, make, model string) []string
}

// HTTPDoer is the outbound HTTP client dependency. *http.Client satisfies it;
// tests inject fakes to record and script requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// defaultRequestTimeout bounds each individual upstream attempt. A timeout
// aborts only that attempt; the enclosing candidate loop continues.
const defaultRequestTimeout = 10 * time.Second

// getJSON issues one GET with the given headers and per-attempt timeout and
// decodes the response body into out. Status codes >= 400 are returned to the
// caller as statusError so adapters can decide whether to tolerate them.
func getJSON(ctx context.Context, client HTTPDoer, timeout time.Duration, url string, headers map[string]string, out interface{}) error {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &statusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// statusError reports a non-2xx upstream status.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Code)
}
