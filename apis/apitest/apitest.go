// Package apitest holds test doubles shared by the provider adapter tests.
package apitest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"

	"weatherwizard/apis"
	"weatherwizard/manager"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Consume(ctx context.Context, provider manager.Provider) error {
	args := m.Called(ctx, provider)
	return args.Error(0)
}

func (m *MockLedger) Usage(ctx context.Context, provider manager.Provider) (manager.QuotaEntry, error) {
	args := m.Called(ctx, provider)
	return args.Get(0).(manager.QuotaEntry), args.Error(1)
}

type MockKeyStore struct {
	mock.Mock
}

func (m *MockKeyStore) SetLocationKey(ctx context.Context, cityID uint, provider manager.Provider, key string) error {
	args := m.Called(ctx, cityID, provider, key)
	return args.Error(0)
}

// Server starts an httptest server for handler and returns deps whose client
// and collaborators are ready for use against it.
func Server(t *testing.T, handler http.HandlerFunc) (*httptest.Server, apis.Deps, *MockLedger, *MockKeyStore) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ledger := new(MockLedger)
	keys := new(MockKeyStore)

	return srv, apis.Deps{Client: apis.NewClient(0), Ledger: ledger, Keys: keys}, ledger, keys
}

// JSON returns a handler answering every request with status and body.
func JSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
