package manager_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"weatherwizard/manager"
)

func TestResolveSingleMatchSkipsDisambiguation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	saveCity(t, s, manager.City{Name: "Ljubljana", Region: "Ljubljana", Country: "SI", Lat: 46.05, Lon: 14.51})

	d := new(MockDisambiguator)
	r := manager.NewResolver(s, nil)

	city, err := r.Resolve(ctx, "ljubljana", "", d)
	require.NoError(t, err)
	assert.Equal(t, "Ljubljana", city.Name)
	assert.Equal(t, 1, city.Chosen)

	d.AssertNotCalled(t, "Confirm", mock.Anything)
	d.AssertNotCalled(t, "Choose", mock.Anything)

	stored, err := s.FindCity(ctx, "ljubljana", "", "SI")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Chosen)
}

func TestResolveConfirmsMostPopularCity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	saveCity(t, s, manager.City{Name: "Springfield", Region: "IL", Country: "US", Lat: 39.8, Lon: -89.64})
	saveCity(t, s, manager.City{Name: "Springfield", Region: "MO", Country: "US", Lat: 37.21, Lon: -93.29, Chosen: 3})

	d := new(MockDisambiguator)
	d.On("Confirm", mock.MatchedBy(func(c manager.City) bool { return c.Region == "MO" })).Return(true, nil).Once()

	city, err := manager.NewResolver(s, nil).Resolve(ctx, "springfield", "", d)
	require.NoError(t, err)
	assert.Equal(t, "MO", city.Region)
	assert.Equal(t, 4, city.Chosen)

	d.AssertExpectations(t)
	d.AssertNotCalled(t, "Choose", mock.Anything)

	il, err := s.FindCity(ctx, "springfield", "IL", "US")
	require.NoError(t, err)
	assert.Equal(t, 0, il.Chosen)
}

func TestResolveChoosesFromList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	saveCity(t, s, manager.City{Name: "Springfield", Region: "IL", Country: "US"})
	saveCity(t, s, manager.City{Name: "Springfield", Region: "MO", Country: "US", Chosen: 2})

	d := new(MockDisambiguator)
	d.On("Confirm", mock.Anything).Return(false, nil).Once()
	d.On("Choose", mock.MatchedBy(func(cities []manager.City) bool {
		return len(cities) == 2 && cities[0].Region == "MO" && cities[1].Region == "IL"
	})).Return(1, nil).Once()

	city, err := manager.NewResolver(s, nil).Resolve(ctx, "Springfield", "us", d)
	require.NoError(t, err)
	assert.Equal(t, "IL", city.Region)

	d.AssertExpectations(t)

	il, err := s.FindCity(ctx, "springfield", "IL", "US")
	require.NoError(t, err)
	assert.Equal(t, 1, il.Chosen)

	mo, err := s.FindCity(ctx, "springfield", "MO", "US")
	require.NoError(t, err)
	assert.Equal(t, 2, mo.Chosen)
}

func TestResolveRejectedSelectionLeavesCountersUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  error
	}{
		{name: "none of the above", index: 2, want: manager.ErrUnresolved},
		{name: "out of range", index: 7, want: manager.ErrInvalidSelection},
		{name: "negative", index: -1, want: manager.ErrInvalidSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := newTestStore(t)
			saveCity(t, s, manager.City{Name: "Springfield", Region: "IL", Country: "US", Chosen: 1})
			saveCity(t, s, manager.City{Name: "Springfield", Region: "MO", Country: "US", Chosen: 2})

			d := new(MockDisambiguator)
			d.On("Confirm", mock.Anything).Return(false, nil)
			d.On("Choose", mock.Anything).Return(tt.index, nil)

			city, err := manager.NewResolver(s, nil).Resolve(ctx, "springfield", "", d)
			assert.Nil(t, city)
			assert.ErrorIs(t, err, tt.want)

			cities, err := s.FindCities(ctx, "springfield", "")
			require.NoError(t, err)
			require.Len(t, cities, 2)
			assert.Equal(t, 2, cities[0].Chosen)
			assert.Equal(t, 1, cities[1].Chosen)
		})
	}
}

func TestResolvePopulatesFromGeocoder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g := new(MockGeocoder)
	g.On("Lookup", mock.Anything, "paris", "").Return([]manager.Place{
		{Name: "Paris", Country: "fr", State: "Ile-de-France", County: "Paris", Lat: 48.85661, Lon: 2.35222},
		{Name: "Paris", Country: "us", State: "Texas", County: "Lamar County", Lat: 33.66094, Lon: -95.55551},
		{Name: "Paris Hilton Hotel", Country: "us", State: "Nevada", Lat: 36.1, Lon: -115.17},
	}, nil).Once()

	d := new(MockDisambiguator)
	d.On("Confirm", mock.Anything).Return(true, nil).Once()

	city, err := manager.NewResolver(s, g).Resolve(ctx, "paris", "", d)
	require.NoError(t, err)
	assert.Equal(t, "Paris", city.Name)

	fr, err := s.FindCity(ctx, "paris", "", "FR")
	require.NoError(t, err)
	assert.Equal(t, "Paris", fr.Region)
	assert.Equal(t, 48.86, fr.Lat)
	assert.Equal(t, 2.35, fr.Lon)

	us, err := s.FindCity(ctx, "paris", "", "US")
	require.NoError(t, err)
	assert.Equal(t, "Texas", us.Region)

	cities, err := s.FindCities(ctx, "paris", "")
	require.NoError(t, err)
	assert.Len(t, cities, 2)

	g.AssertExpectations(t)
}

func TestResolveGeocoderCountryFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g := new(MockGeocoder)
	g.On("Lookup", mock.Anything, "paris", "FR").Return([]manager.Place{
		{Name: "Paris", Country: "fr", County: "Paris", Lat: 48.85, Lon: 2.35},
		{Name: "Paris", Country: "us", State: "Texas", Lat: 33.66, Lon: -95.55},
	}, nil).Once()

	d := new(MockDisambiguator)

	city, err := manager.NewResolver(s, g).Resolve(ctx, "paris", "fr", d)
	require.NoError(t, err)
	assert.Equal(t, "FR", city.Country)

	_, err = s.FindCity(ctx, "paris", "", "US")
	assert.ErrorIs(t, err, manager.ErrNotFound)

	d.AssertNotCalled(t, "Confirm", mock.Anything)
}

func TestResolveUnresolvedAfterGeocoding(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g := new(MockGeocoder)
	g.On("Lookup", mock.Anything, "atlantis", "").Return([]manager.Place{}, nil).Once()

	city, err := manager.NewResolver(s, g).Resolve(ctx, "atlantis", "", new(MockDisambiguator))
	assert.Nil(t, city)
	assert.ErrorIs(t, err, manager.ErrUnresolved)
}

func TestResolveGeocoderFailureIsUnresolved(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g := new(MockGeocoder)
	g.On("Lookup", mock.Anything, "atlantis", "").Return(nil, manager.ErrQuotaExceeded).Once()

	_, err := manager.NewResolver(s, g).Resolve(ctx, "atlantis", "", new(MockDisambiguator))
	assert.ErrorIs(t, err, manager.ErrUnresolved)
}

func TestResolveKeepsGeocodedCitiesWhenSelectionFails(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g := new(MockGeocoder)
	g.On("Lookup", mock.Anything, "portland", "").Return([]manager.Place{
		{Name: "Portland", Country: "us", State: "Oregon"},
		{Name: "Portland", Country: "us", State: "Maine"},
	}, nil)

	d := new(MockDisambiguator)
	d.On("Confirm", mock.Anything).Return(false, nil)
	d.On("Choose", mock.Anything).Return(2, nil)

	_, err := manager.NewResolver(s, g).Resolve(ctx, "portland", "", d)
	assert.ErrorIs(t, err, manager.ErrUnresolved)

	cities, err := s.FindCities(ctx, "portland", "")
	require.NoError(t, err)
	assert.Len(t, cities, 2)
}
