package manager_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"weatherwizard/manager"
	"weatherwizard/store"
)

type MockForecastAPI struct {
	mock.Mock
	provider manager.Provider
}

func (m *MockForecastAPI) Provider() manager.Provider {
	return m.provider
}

func (m *MockForecastAPI) Forecast(ctx context.Context, city *manager.City) ([2]manager.Reading, error) {
	args := m.Called(ctx, city)
	return args.Get(0).([2]manager.Reading), args.Error(1)
}

type MockHistoryAPI struct {
	MockForecastAPI
}

func (m *MockHistoryAPI) History(ctx context.Context, city *manager.City, date time.Time) (manager.Reading, error) {
	args := m.Called(ctx, city, date)
	return args.Get(0).(manager.Reading), args.Error(1)
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Lookup(ctx context.Context, name, country string) ([]manager.Place, error) {
	args := m.Called(ctx, name, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]manager.Place), args.Error(1)
}

type MockDisambiguator struct {
	mock.Mock
}

func (m *MockDisambiguator) Confirm(city manager.City) (bool, error) {
	args := m.Called(city)
	return args.Bool(0), args.Error(1)
}

func (m *MockDisambiguator) Choose(cities []manager.City) (int, error) {
	args := m.Called(cities)
	return args.Int(0), args.Error(1)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := store.Open(store.DriverSQLite, "file::memory:")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return store.New(db, time.UTC)
}

func saveCity(t *testing.T, s *store.Store, city manager.City) *manager.City {
	t.Helper()

	saved, err := s.SaveCity(context.Background(), city)
	require.NoError(t, err)
	return saved
}

func temp(v float64) *float64 {
	return &v
}
