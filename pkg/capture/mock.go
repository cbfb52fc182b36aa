package capture

import (
	"fmt"
	"sync"
)

// MockSource is an in-memory Source for tests. It serves a fixed frame
// and counts lifecycle calls so tests can assert idempotence.
type MockSource struct {
	mu      sync.Mutex
	frame   []byte
	open    bool
	openErr error

	OpenCalls  int
	ReadCalls  int
	CloseCalls int
}

// NewMockSource creates a mock that serves the given frame.
func NewMockSource(frame []byte) *MockSource {
	return &MockSource{frame: frame}
}

// FailOpen makes every Open call return err.
func (m *MockSource) FailOpen(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr = err
}

// Open implements Source.
func (m *MockSource) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OpenCalls++
	if m.openErr != nil {
		return m.openErr
	}
	m.open = true
	return nil
}

// ReadJPEG implements Source.
func (m *MockSource) ReadJPEG() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadCalls++
	if !m.open {
		return nil, fmt.Errorf("mock source not open")
	}
	return m.frame, nil
}

// Close implements Source.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	m.open = false
	return nil
}

// Reads returns the ReadJPEG call count. Unlike the bare counter fields,
// it is safe to poll while the source is in use.
func (m *MockSource) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ReadCalls
}

// Opened reports whether the source is currently open.
func (m *MockSource) Opened() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
