package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/zoning-cli/internal/model"
	"github.com/sells-group/zoning-cli/internal/store"
)

// --- Geoservice Mock ---

type mockGeoservice struct {
	mock.Mock
}

func (m *mockGeoservice) Lookup(ctx context.Context, address string) (*model.GeoLookup, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GeoLookup), args.Error(1)
}

// --- Zola Mock ---

type mockZola struct {
	mock.Mock
}

func (m *mockZola) Parcel(ctx context.Context, bbl string) (*model.ParcelAttributes, error) {
	args := m.Called(ctx, bbl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ParcelAttributes), args.Error(1)
}

// newTestStore backs orchestrator tests with a real SQLite store so record
// ordering and report mutations can be asserted end to end.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}
