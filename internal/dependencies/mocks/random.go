package mocks

import (
	"fmt"

	"github.com/whisperwall/whisperwall/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// It produces deterministic sequential identifiers.
type MockRandom struct {
	counter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// ID returns a deterministic identifier: prefix + incrementing counter
func (r *MockRandom) ID(prefix string) string {
	r.counter++
	return fmt.Sprintf("%s%06d", prefix, r.counter)
}

// Reset restarts the counter
func (r *MockRandom) Reset() {
	r.counter = 0
}
