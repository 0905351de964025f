package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/wealth-builder/internal/report"
)

// MockWriter is a mock implementation of TableWriter for testing.
type MockWriter struct {
	WriteFunc      func(ctx context.Context, tables []report.Table) (string, error)
	LastTables     []report.Table
	WriteCallCount int
	mu             sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// WriteTables implements the TableWriter interface.
func (m *MockWriter) WriteTables(ctx context.Context, tables []report.Table) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastTables = tables

	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, tables)
	}
	return "mock-spreadsheet", nil
}

// Reset clears all recorded calls.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount = 0
	m.LastTables = nil
}

var _ TableWriter = (*MockWriter)(nil)
