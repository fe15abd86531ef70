package iostore

import (
	"context"
	"time"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetSnapshotStore implements the StoreManager interface.
func (m *MockStoreManager) GetSnapshotStore() contract.SnapshotStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SnapshotStore)
	return store
}

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ contract.SnapshotStore = &MockSnapshotStore{} // Compile-time check

// ListSnapshots implements the SnapshotStore interface.
func (m *MockSnapshotStore) ListSnapshots(ctx context.Context, metric string) ([]schema.Snapshot, error) {
	args := m.Called(ctx, metric)
	snaps, _ := args.Get(0).([]schema.Snapshot)
	return snaps, args.Error(1)
}

// UpsertSnapshots implements the SnapshotStore interface.
func (m *MockSnapshotStore) UpsertSnapshots(ctx context.Context, snapshots ...schema.Snapshot) error {
	args := m.Called(ctx, snapshots)
	return args.Error(0)
}

// LastSnapshot implements the SnapshotStore interface.
func (m *MockSnapshotStore) LastSnapshot(ctx context.Context, metric string) (schema.Snapshot, bool, error) {
	args := m.Called(ctx, metric)
	return args.Get(0).(schema.Snapshot), args.Bool(1), args.Error(2)
}

// ListMetrics implements the SnapshotStore interface.
func (m *MockSnapshotStore) ListMetrics(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	metrics, _ := args.Get(0).([]string)
	return metrics, args.Error(1)
}

// GetStatus implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the SnapshotStore interface.
func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(ctx context.Context, startTime time.Time, snapshotDate time.Time) (int64, error) {
	args := m.Called(ctx, startTime, snapshotDate)
	return args.Get(0).(int64), args.Error(1)
}

// RecordOutcome implements the RunStore interface.
func (m *MockRunStore) RecordOutcome(ctx context.Context, runID int64, result schema.MetricResult) error {
	args := m.Called(ctx, runID, result)
	return args.Error(0)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(ctx context.Context, runID int64, endTime time.Time, written int) error {
	args := m.Called(ctx, runID, endTime, written)
	return args.Error(0)
}

// ListRuns implements the RunStore interface.
func (m *MockRunStore) ListRuns(ctx context.Context, limit int) ([]schema.IngestRun, error) {
	args := m.Called(ctx, limit)
	runs, _ := args.Get(0).([]schema.IngestRun)
	return runs, args.Error(1)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
