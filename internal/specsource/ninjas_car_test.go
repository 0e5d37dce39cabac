package specsource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetforge/fleetforge/internal/fleet"
	"github.com/fleetforge/fleetforge/internal/observability"
)

func newCarAdapter(doer *fakeDoer) *NinjasCarAdapter {
	return NewNinjasCarAdapter(doer, observability.Discard(), NinjasConfig{
		BaseURL: testBaseURL,
		APIKey:  "test-key",
	})
}

func TestCarAdapterSupports(t *testing.T) {
	adapter := newCarAdapter(newFakeDoer())

	assert.True(t, adapter.Supports("car", fleet.Vehicle{}))
	assert.True(t, adapter.Supports("van", fleet.Vehicle{}))
	assert.True(t, adapter.Supports("truck", fleet.Vehicle{}))
	assert.False(t, adapter.Supports("motorcycle", fleet.Vehicle{}))
	assert.False(t, adapter.Supports("Motorbike", fleet.Vehicle{}))
}

func TestCarAdapterMapsPayload(t *testing.T) {
	doer := newFakeDoer()
	doer.respond(testBaseURL+"/cars?make=Mazda&model=6+SkyActiv&year=2017", 200, `[{
		"make": "Mazda",
		"model": "6",
		"year": 2017,
		"class": "midsize station wagon",
		"cylinders": 4,
		"displacement": 2.5,
		"fuel_type": "gas",
		"transmission": "a",
		"drive": "fwd",
		"city_mpg": 26,
		"highway_mpg": 35,
		"combination_mpg": 29
	}]`)
	adapter := newCarAdapter(doer)

	spec := adapter.FetchSpecifications(context.Background(), fleet.Vehicle{
		Class: "car",
		Make:  "Mazda",
		Model: "6 SkyActiv",
		Year:  2017,
	})

	require.NotNil(t, spec)
	require.Len(t, doer.requests, 1)
	assert.Equal(t, "test-key", doer.requests[0].Header.Get("X-Api-Key"))

	require.NotNil(t, spec.EngineType)
	assert.Equal(t, "4 cylinders", *spec.EngineType)
	require.NotNil(t, spec.Displacement)
	assert.Equal(t, "2.5 L", *spec.Displacement)
	require.NotNil(t, spec.FuelSystem)
	assert.Equal(t, "gas", *spec.FuelSystem)
	require.NotNil(t, spec.Transmission)
	assert.Equal(t, "a", *spec.Transmission)

	assert.Equal(t, "fwd", spec.AdditionalInfo["drive"])
	assert.Equal(t, "29 MPG", spec.AdditionalInfo["fuel_economy_combined"])
	assert.Equal(t, "26 MPG", spec.AdditionalInfo["fuel_economy_city"])
	assert.Equal(t, "35 MPG", spec.AdditionalInfo["fuel_economy_highway"])
	assert.Equal(t, "Mazda", spec.AdditionalInfo["make"])
	assert.Equal(t, "2017", spec.AdditionalInfo["year"])
	assert.Equal(t, "midsize station wagon", spec.AdditionalInfo["class"])
}

func TestCarAdapterFallsThroughVariations(t *testing.T) {
	doer := newFakeDoer()
	// The full name misses, the suffix-trimmed variant hits.
	doer.respond(testBaseURL+"/cars?make=Mazda&model=6&year=2017", 200, `[{
		"make": "Mazda", "model": "6", "cylinders": 4, "fuel_type": "gas"
	}]`)
	adapter := newCarAdapter(doer)

	spec := adapter.FetchSpecifications(context.Background(), fleet.Vehicle{
		Class: "car",
		Make:  "Mazda",
		Model: "6 Estate",
		Year:  2017,
	})

	require.NotNil(t, spec)
	urls := doer.urls()
	require.Len(t, urls, 2)
	assert.Equal(t, testBaseURL+"/cars?make=Mazda&model=6+Estate&year=2017", urls[0])
	assert.Equal(t, testBaseURL+"/cars?make=Mazda&model=6&year=2017", urls[1])
	assert.Equal(t, urls[1], spec.SourceURL)
}

func TestCarAdapterToleratesUpstreamErrors(t *testing.T) {
	doer := newFakeDoer()
	doer.respond(testBaseURL+"/cars?make=Mazda&model=6+Estate&year=2017", 500, `{"error": "boom"}`)
	doer.respond(testBaseURL+"/cars?make=Mazda&model=6&year=2017", 200, `[{
		"make": "Mazda", "model": "6", "cylinders": 4
	}]`)
	adapter := newCarAdapter(doer)

	spec := adapter.FetchSpecifications(context.Background(), fleet.Vehicle{
		Class: "car",
		Make:  "Mazda",
		Model: "6 Estate",
		Year:  2017,
	})

	require.NotNil(t, spec)
	require.NotNil(t, spec.EngineType)
	assert.Equal(t, "4 cylinders", *spec.EngineType)
}

func TestCarAdapterNoMatch(t *testing.T) {
	doer := newFakeDoer()
	adapter := newCarAdapter(doer)

	spec := adapter.FetchSpecifications(context.Background(), fleet.Vehicle{
		Class: "car",
		Make:  "Mazda",
		Model: "6 Estate",
		Year:  2017,
	})

	assert.Nil(t, spec)
	assert.NotEmpty(t, doer.requests)
}

func TestCarAdapterNoKeyMakesNoRequests(t *testing.T) {
	doer := newFakeDoer()
	adapter := NewNinjasCarAdapter(doer, observability.Discard(), NinjasConfig{BaseURL: testBaseURL})

	assert.Nil(t, adapter.FetchSpecifications(context.Background(), fleet.Vehicle{
		Class: "car", Make: "Mazda", Model: "6", Year: 2017,
	}))
	assert.Empty(t, doer.requests)
}
