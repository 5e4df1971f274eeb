package watch

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures the fsnotify event loop and debounce timer started by
// Start/Close don't leak goroutines across tests.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
