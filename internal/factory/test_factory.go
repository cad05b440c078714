package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/whisperwall/whisperwall/internal/dependencies/mocks"
	"github.com/whisperwall/whisperwall/internal/services/password"
	"github.com/whisperwall/whisperwall/internal/services/session"
	"github.com/whisperwall/whisperwall/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The password hasher runs with deliberately cheap parameters.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	params := password.Params{N: 1 << 4, R: 8, P: 1, SaltLen: 16, KeyLen: 32}
	app := newWithDependencies(store, mockClock, mockRandom, params, session.DefaultConfig(), logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
