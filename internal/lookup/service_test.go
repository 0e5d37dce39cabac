package lookup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetforge/fleetforge/internal/cache"
	"github.com/fleetforge/fleetforge/internal/fleet"
	"github.com/fleetforge/fleetforge/internal/observability"
	"github.com/fleetforge/fleetforge/internal/specsource"
)

type stubAdapter struct {
	spec   *fleet.Specification
	models []string
	calls  int
}

func (s *stubAdapter) Name() string { return "stub" }

func (s *stubAdapter) Supports(string, fleet.Vehicle) bool { return true }

func (s *stubAdapter) Priority() int { return 90 }

func (s *stubAdapter) FetchSpecifications(context.Context, fleet.Vehicle) *fleet.Specification {
	s.calls++
	return s.spec
}

func (s *stubAdapter) SearchModels(context.Context, string, string) []string { return s.models }

func newTestService(adapter specsource.Adapter, cacheClient cache.Client) *Service {
	resolver := specsource.NewResolver(observability.Discard())
	resolver.Register(adapter)
	return NewService(observability.Discard(), resolver, cacheClient, nil, Config{
		CacheResults: cacheClient != nil,
		CacheTTL:     time.Minute,
	})
}

func resolvedSpec() *fleet.Specification {
	spec := fleet.NewSpecification()
	spec.Power = fleet.Str("94 HP")
	spec.AddInfo("category", "Naked bike")
	spec.ScrapedAt = time.Now().UTC()
	spec.SourceURL = "stub"
	return spec
}

func TestLookupResolvesAndCaches(t *testing.T) {
	adapter := &stubAdapter{spec: resolvedSpec()}
	svc := newTestService(adapter, cache.NewMemoryClient(10))
	v := fleet.Vehicle{Class: "motorcycle", Make: "Honda", Model: "CB650R", Year: 2020}

	spec, err := svc.Lookup(context.Background(), uuid.Nil, v)
	require.NoError(t, err)
	require.NotNil(t, spec)
	assert.Equal(t, 1, adapter.calls)

	// Second lookup is served from cache without consulting the adapter.
	spec, err = svc.Lookup(context.Background(), uuid.Nil, v)
	require.NoError(t, err)
	require.NotNil(t, spec)
	assert.Equal(t, 1, adapter.calls)

	require.NotNil(t, spec.Power)
	assert.Equal(t, "94 HP", *spec.Power)
	assert.Equal(t, "Naked bike", spec.AdditionalInfo["category"])
	assert.Nil(t, spec.Torque, "unset fields survive the cache round trip as nil")
}

func TestLookupNoMatchIsNotAnError(t *testing.T) {
	adapter := &stubAdapter{}
	svc := newTestService(adapter, cache.NewMemoryClient(10))

	spec, err := svc.Lookup(context.Background(), uuid.Nil, fleet.Vehicle{Make: "Honda", Model: "CB650R"})
	require.NoError(t, err)
	assert.Nil(t, spec)

	// Misses are not cached; the sources are retried next time.
	_, err = svc.Lookup(context.Background(), uuid.Nil, fleet.Vehicle{Make: "Honda", Model: "CB650R"})
	require.NoError(t, err)
	assert.Equal(t, 2, adapter.calls)
}

func TestLookupWithoutCache(t *testing.T) {
	adapter := &stubAdapter{spec: resolvedSpec()}
	svc := newTestService(adapter, nil)
	v := fleet.Vehicle{Make: "Honda", Model: "CB650R"}

	_, err := svc.Lookup(context.Background(), uuid.Nil, v)
	require.NoError(t, err)
	_, err = svc.Lookup(context.Background(), uuid.Nil, v)
	require.NoError(t, err)
	assert.Equal(t, 2, adapter.calls)
}

func TestLookupCacheKeyPrefersRegistration(t *testing.T) {
	adapter := &stubAdapter{spec: resolvedSpec()}
	c := cache.NewMemoryClient(10)
	svc := newTestService(adapter, c)

	v := fleet.Vehicle{Make: "Honda", Model: "CB650R", Registration: "AB12 CDE"}
	_, err := svc.Lookup(context.Background(), uuid.Nil, v)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), cache.RegistrationKey("AB12 CDE"))
	assert.NoError(t, err)
	_, err = c.Get(context.Background(), cache.SpecKey("Honda", "CB650R", 0))
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestSearchModels(t *testing.T) {
	adapter := &stubAdapter{models: []string{"CB650R", "CBR1000RR"}}
	svc := newTestService(adapter, nil)

	models := svc.SearchModels(context.Background(), "motorcycle", "Honda", "cb")
	assert.Equal(t, []string{"CB650R", "CBR1000RR"}, models)
}

func TestRowConversionRoundTrip(t *testing.T) {
	spec := resolvedSpec()
	vehicleID := uuid.New()

	row, err := toRow(vehicleID, spec)
	require.NoError(t, err)
	assert.Equal(t, vehicleID, row.VehicleID)
	require.NotNil(t, row.Power)
	assert.Equal(t, "94 HP", *row.Power)
	assert.JSONEq(t, `{"category":"Naked bike"}`, row.AdditionalInfo)

	back, err := FromRow(row)
	require.NoError(t, err)
	require.NotNil(t, back.Power)
	assert.Equal(t, "94 HP", *back.Power)
	assert.Nil(t, back.Torque)
	assert.Equal(t, "Naked bike", back.AdditionalInfo["category"])
	assert.Equal(t, spec.SourceURL, back.SourceURL)
}
