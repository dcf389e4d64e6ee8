package workstore

import (
	"github.com/stretchr/testify/mock"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/schema"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetWorkspaceStore implements the StoreManager interface.
func (m *MockStoreManager) GetWorkspaceStore() contract.WorkspaceStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.WorkspaceStore)
	return store
}

// MockWorkspaceStore is a mock implementation of WorkspaceStore for testing.
type MockWorkspaceStore struct {
	mock.Mock
}

var _ contract.WorkspaceStore = &MockWorkspaceStore{} // Compile-time check

// UpsertRun implements the WorkspaceStore interface.
func (m *MockWorkspaceStore) UpsertRun(rec schema.RunRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

// GetRun implements the WorkspaceStore interface.
func (m *MockWorkspaceStore) GetRun(runID string) (*schema.RunRecord, error) {
	args := m.Called(runID)
	rec, _ := args.Get(0).(*schema.RunRecord)
	return rec, args.Error(1)
}

// ListRuns implements the WorkspaceStore interface.
func (m *MockWorkspaceStore) ListRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	recs, _ := args.Get(0).([]schema.RunRecord)
	return recs, args.Error(1)
}

// DeleteRun implements the WorkspaceStore interface.
func (m *MockWorkspaceStore) DeleteRun(runID string) error {
	args := m.Called(runID)
	return args.Error(0)
}

// SetActiveRun implements the WorkspaceStore interface.
func (m *MockWorkspaceStore) SetActiveRun(runID string) error {
	args := m.Called(runID)
	return args.Error(0)
}

// GetActiveRun implements the WorkspaceStore interface.
func (m *MockWorkspaceStore) GetActiveRun() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// SaveMessages implements the WorkspaceStore interface.
func (m *MockWorkspaceStore) SaveMessages(runID string, msgs []schema.MessageRecord) error {
	args := m.Called(runID, msgs)
	return args.Error(0)
}

// ListMessages implements the WorkspaceStore interface.
func (m *MockWorkspaceStore) ListMessages(runID string) ([]schema.MessageRecord, error) {
	args := m.Called(runID)
	recs, _ := args.Get(0).([]schema.MessageRecord)
	return recs, args.Error(1)
}

// GetStatus implements the WorkspaceStore interface.
func (m *MockWorkspaceStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the WorkspaceStore interface.
func (m *MockWorkspaceStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
