package specsource

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetforge/fleetforge/internal/fleet"
	"github.com/fleetforge/fleetforge/internal/match"
	"github.com/fleetforge/fleetforge/internal/observability"
)

const testBaseURL = "https://api.test/v1"

func newMotorcycleAdapter(doer *fakeDoer) *NinjasMotorcycleAdapter {
	return NewNinjasMotorcycleAdapter(doer, observability.Discard(), NinjasConfig{
		BaseURL: testBaseURL,
		APIKey:  "test-key",
	})
}

func TestMotorcycleAdapterSupports(t *testing.T) {
	adapter := newMotorcycleAdapter(newFakeDoer())

	assert.True(t, adapter.Supports("motorcycle", fleet.Vehicle{}))
	assert.True(t, adapter.Supports("Motorbike", fleet.Vehicle{}))
	assert.False(t, adapter.Supports("car", fleet.Vehicle{}))
	assert.False(t, adapter.Supports("truck", fleet.Vehicle{}))
}

func TestMotorcycleAdapterExactHitStopsAfterOneRequest(t *testing.T) {
	doer := newFakeDoer()
	doer.respond(testBaseURL+"/motorcycles?make=Honda&model=CB+650+R&year=2020", 200, `[{
		"make": "Honda",
		"model": "CB650R",
		"year": "2020",
		"type": "Naked bike",
		"engine": "Four cylinder four-stroke",
		"displacement": "649.0 ccm",
		"power": "94 HP",
		"seat_height": "810 mm",
		"total_weight": "208 kg"
	}]`)
	adapter := newMotorcycleAdapter(doer)

	spec := adapter.FetchSpecifications(context.Background(), fleet.Vehicle{
		Class: "motorcycle",
		Make:  "Honda",
		Model: "CB 650 R",
		Year:  2020,
	})

	require.NotNil(t, spec)
	require.Len(t, doer.requests, 1, "an exact hit must not trigger further requests")

	assert.Equal(t, "test-key", doer.requests[0].Header.Get("X-Api-Key"))
	assert.Equal(t, "application/json", doer.requests[0].Header.Get("Accept"))

	require.NotNil(t, spec.EngineType)
	assert.Equal(t, "Four cylinder four-stroke", *spec.EngineType)
	require.NotNil(t, spec.Power)
	assert.Equal(t, "94 HP", *spec.Power)
	require.NotNil(t, spec.SeatHeight)
	assert.Equal(t, "810 mm", *spec.SeatHeight)

	assert.Equal(t, "Naked bike", spec.AdditionalInfo["category"])
	assert.Equal(t, "CB650R", spec.AdditionalInfo["api_model_name"])
	assert.Equal(t, "208 kg", spec.AdditionalInfo["total_weight"])
	assert.NotContains(t, spec.AdditionalInfo, "make")
	assert.NotContains(t, spec.AdditionalInfo, "year")

	assert.Equal(t, testBaseURL+"/motorcycles?make=Honda&model=CB+650+R&year=2020", spec.SourceURL)
	assert.False(t, spec.ScrapedAt.IsZero())
}

func TestMotorcycleAdapterNoKeyMakesNoRequests(t *testing.T) {
	doer := newFakeDoer()
	adapter := NewNinjasMotorcycleAdapter(doer, observability.Discard(), NinjasConfig{BaseURL: testBaseURL})

	spec := adapter.FetchSpecifications(context.Background(), fleet.Vehicle{
		Class: "motorcycle", Make: "Honda", Model: "CB 650 R", Year: 2020,
	})

	assert.Nil(t, spec)
	assert.Empty(t, doer.requests)
}

func TestMotorcycleAdapterRequiresMakeAndModel(t *testing.T) {
	doer := newFakeDoer()
	adapter := newMotorcycleAdapter(doer)

	assert.Nil(t, adapter.FetchSpecifications(context.Background(), fleet.Vehicle{Class: "motorcycle", Model: "CB 650 R"}))
	assert.Nil(t, adapter.FetchSpecifications(context.Background(), fleet.Vehicle{Class: "motorcycle", Make: "Honda"}))
	assert.Empty(t, doer.requests)
}

func TestMotorcycleAdapterEscalationOrder(t *testing.T) {
	doer := newFakeDoer()
	adapter := newMotorcycleAdapter(doer)

	spec := adapter.FetchSpecifications(context.Background(), fleet.Vehicle{
		Class: "motorcycle",
		Make:  "Honda",
		Model: "CB 650 R",
		Year:  2020,
	})
	assert.Nil(t, spec)

	// Per make variant: every model variant at the exact year first, then the
	// all-models batch at the original year, then the nearby years in
	// closest-first order.
	want := []string{
		testBaseURL + "/motorcycles?make=Honda&model=CB+650+R&year=2020",
		testBaseURL + "/motorcycles?make=Honda&model=CB&year=2020",
		testBaseURL + "/motorcycles?make=Honda&model=CB+650&year=2020",
		testBaseURL + "/motorcycles?make=Honda&model=650+R&year=2020",
		testBaseURL + "/motorcycles?make=Honda&year=2020",
		testBaseURL + "/motorcycles?make=Honda&year=2021",
		testBaseURL + "/motorcycles?make=Honda&year=2019",
		testBaseURL + "/motorcycles?make=Honda&year=2022",
		testBaseURL + "/motorcycles?make=Honda&year=2018",
		testBaseURL + "/motorcycles?make=honda&model=CB+650+R&year=2020",
		testBaseURL + "/motorcycles?make=honda&model=CB&year=2020",
		testBaseURL + "/motorcycles?make=honda&model=CB+650&year=2020",
		testBaseURL + "/motorcycles?make=honda&model=650+R&year=2020",
		testBaseURL + "/motorcycles?make=honda&year=2020",
		testBaseURL + "/motorcycles?make=honda&year=2021",
		testBaseURL + "/motorcycles?make=honda&year=2019",
		testBaseURL + "/motorcycles?make=honda&year=2022",
		testBaseURL + "/motorcycles?make=honda&year=2018",
	}
	assert.Equal(t, want, doer.urls())
}

func TestMotorcycleAdapterNoYearSkipsBatchSearch(t *testing.T) {
	doer := newFakeDoer()
	adapter := newMotorcycleAdapter(doer)

	spec := adapter.FetchSpecifications(context.Background(), fleet.Vehicle{
		Class: "motorcycle",
		Make:  "Honda",
		Model: "CB 650 R",
	})
	assert.Nil(t, spec)

	for _, u := range doer.urls() {
		assert.Contains(t, u, "model=", "without a year only direct model lookups are attempted")
	}
	assert.Len(t, doer.requests, 8)
}

func TestMotorcycleAdapterFuzzyMatchAtNearbyYear(t *testing.T) {
	doer := newFakeDoer()
	// All direct variants and the original-year batch miss; the year+1 batch
	// carries a decoy under the wrong make and a genuine fuzzy match.
	doer.respond(testBaseURL+"/motorcycles?make=Honda&year=2021", 200, `[
		{"make": "Kawasaki", "model": "CB 650 R", "power": "999 HP"},
		{"make": "Honda", "model": "CB650R ABS", "power": "94 HP"}
	]`)
	adapter := newMotorcycleAdapter(doer)

	spec := adapter.FetchSpecifications(context.Background(), fleet.Vehicle{
		Class: "motorcycle",
		Make:  "Honda",
		Model: "CB 650 R",
		Year:  2020,
	})

	require.NotNil(t, spec)
	assert.Equal(t, "CB650R ABS", spec.AdditionalInfo["api_model_name"])
	require.NotNil(t, spec.Power)
	assert.Equal(t, "94 HP", *spec.Power)
	assert.Equal(t, testBaseURL+"/motorcycles?make=Honda&year=2021", spec.SourceURL)

	urls := doer.urls()
	require.Len(t, urls, 6)
	assert.Equal(t, testBaseURL+"/motorcycles?make=Honda&year=2020", urls[4])
	assert.Equal(t, testBaseURL+"/motorcycles?make=Honda&year=2021", urls[5])
}

func TestMotorcycleAdapterRejectsLowSimilarityBatch(t *testing.T) {
	doer := newFakeDoer()
	// Disjoint numeric designators score 0, below the acceptance threshold.
	doer.respond(testBaseURL+"/motorcycles?make=Honda&year=2020", 200, `[
		{"make": "Honda", "model": "ZX-9R", "power": "139 HP"}
	]`)
	adapter := newMotorcycleAdapter(doer)

	spec := adapter.FetchSpecifications(context.Background(), fleet.Vehicle{
		Class: "motorcycle",
		Make:  "Honda",
		Model: "CB 650 R",
		Year:  2020,
	})

	assert.Nil(t, spec)
	assert.Contains(t, doer.urls(), testBaseURL+"/motorcycles?make=Honda&year=2021",
		"a rejected batch match must not stop the nearby-year escalation")
}

func TestFindBestModelMatchFiltersMismatchedMakes(t *testing.T) {
	adapter := newMotorcycleAdapter(newFakeDoer())

	results := []payload{
		{"make": "Kawasaki", "model": "CB650R"},
		{"make": "Honda Motor Co", "model": "CB650R ABS"},
	}

	best := adapter.findBestModelMatch("CB 650 R", results, "Honda")
	require.NotNil(t, best)
	model, _ := best.str("model")
	assert.Equal(t, "CB650R ABS", model)
}

func TestFindBestModelMatchBelowThreshold(t *testing.T) {
	adapter := newMotorcycleAdapter(newFakeDoer())

	results := []payload{
		{"make": "Honda", "model": "ZX-9R"},
	}

	assert.Nil(t, adapter.findBestModelMatch("CB 650 R", results, "Honda"))
}

func TestFindBestModelMatchThresholdBoundary(t *testing.T) {
	adapter := newMotorcycleAdapter(newFakeDoer())

	// 3 edits over 5 characters scores exactly 40. The threshold is
	// inclusive, so this candidate must be accepted.
	atThreshold := "abxyz"
	require.Equal(t, 40.0, match.Score("abcde", atThreshold))

	best := adapter.findBestModelMatch("abcde", []payload{{"make": "Honda", "model": atThreshold}}, "Honda")
	require.NotNil(t, best)
	model, _ := best.str("model")
	assert.Equal(t, atThreshold, model)

	// 61 edits over 100 characters scores exactly 39, one below the
	// threshold, and must be rejected.
	target := strings.Repeat("a", 100)
	belowThreshold := strings.Repeat("a", 39) + strings.Repeat("b", 61)
	require.Equal(t, 39.0, match.Score(target, belowThreshold))

	assert.Nil(t, adapter.findBestModelMatch(target, []payload{{"make": "Honda", "model": belowThreshold}}, "Honda"))
}

func TestMotorcycleAdapterSearchModels(t *testing.T) {
	doer := newFakeDoer()
	doer.respond(testBaseURL+"/motorcyclemodels?make=Honda", 200, `["CB650R", "CBR1000RR", "Africa Twin"]`)
	adapter := newMotorcycleAdapter(doer)

	all := adapter.SearchModels(context.Background(), "Honda", "")
	assert.Equal(t, []string{"CB650R", "CBR1000RR", "Africa Twin"}, all)

	filtered := adapter.SearchModels(context.Background(), "Honda", "cb")
	assert.Equal(t, []string{"CB650R", "CBR1000RR"}, filtered)
}

func TestMotorcycleAdapterSearchModelsNoKey(t *testing.T) {
	doer := newFakeDoer()
	adapter := NewNinjasMotorcycleAdapter(doer, observability.Discard(), NinjasConfig{BaseURL: testBaseURL})

	assert.Nil(t, adapter.SearchModels(context.Background(), "Honda", ""))
	assert.Empty(t, doer.requests)
}
