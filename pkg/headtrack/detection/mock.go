package detection

import (
	"context"
	"sync"
)

// MockDetector is a scriptable Detector for tests. Each Detect call
// returns the next queued result, repeating the last one once the queue
// is exhausted.
type MockDetector struct {
	mu        sync.Mutex
	queue     [][]Face
	idx       int
	readyErr  error
	readyGate chan struct{}

	ReadyCalls  int
	DetectCalls int
	CloseCalls  int
}

// NewMockDetector creates a mock that yields the given results in order.
func NewMockDetector(results ...[]Face) *MockDetector {
	return &MockDetector{queue: results}
}

// FailReady makes every Ready call return err.
func (m *MockDetector) FailReady(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readyErr = err
}

// HoldReady makes the next Ready call block until the returned release
// function is called (or its context expires).
func (m *MockDetector) HoldReady() (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.readyGate = gate
	m.mu.Unlock()
	return func() { close(gate) }
}

// Ready implements Detector.
func (m *MockDetector) Ready(ctx context.Context) error {
	m.mu.Lock()
	m.ReadyCalls++
	gate := m.readyGate
	err := m.readyErr
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ctx.Err()
}

// Detect implements Detector.
func (m *MockDetector) Detect(jpeg []byte) ([]Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DetectCalls++
	if len(m.queue) == 0 {
		return nil, nil
	}
	res := m.queue[m.idx]
	if m.idx < len(m.queue)-1 {
		m.idx++
	}
	return res, nil
}

// Close implements Detector.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	return nil
}

// SyntheticFace builds a full-size face whose pose-relevant landmarks are
// set explicitly: the nose bridge at (noseX, noseY) and the outer eye
// corners horizontally centered on it, eyeSpan apart.
func SyntheticFace(noseX, noseY, eyeSpan float64) Face {
	face := make(Face, MeshLandmarkCount)
	face[NoseBridge] = Landmark{X: noseX, Y: noseY}
	face[EyeOuterRight] = Landmark{X: noseX - eyeSpan/2, Y: noseY}
	face[EyeOuterLeft] = Landmark{X: noseX + eyeSpan/2, Y: noseY}
	return face
}
