package errors

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureReporter struct {
	mu   sync.Mutex
	errs []error
}

func (c *captureReporter) Report(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func withReporter(t *testing.T) *captureReporter {
	if os.Getenv(debugMode) != "" {
		t.Skip("reporting disabled by DEBUG")
	}
	c := &captureReporter{}
	ResetReporters()
	RegisterReporter(c)
	t.Cleanup(ResetReporters)
	return c
}

var errSentinel = New("sentinel")

func TestWrap_KeepsCause(t *testing.T) {
	err := Wrapf(errSentinel, "load %v", "thing")
	assert.True(t, Is(err, errSentinel))
	assert.Equal(t, errSentinel, Cause(err))
	assert.Equal(t, "load thing: sentinel", err.Error())
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, WithStack(nil))
}

func TestAndReport(t *testing.T) {
	c := withReporter(t)
	assert.Nil(t, WrapAndReport(nil, "ok"))
	err := WrapAndReport(errSentinel, "store down")
	require.Error(t, err)
	assert.True(t, Is(err, errSentinel))
	require.Len(t, c.errs, 1)
	assert.Equal(t, err, c.errs[0])
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(time.Minute)
	rl.now = func() time.Time { return now }

	limited, stats := rl.StackBasedRateLimited("a")
	assert.False(t, limited)
	assert.Zero(t, stats.totalOccurCount)

	now = now.Add(10 * time.Second)
	limited, _ = rl.StackBasedRateLimited("a")
	assert.True(t, limited)
	limited, _ = rl.StackBasedRateLimited("b")
	assert.False(t, limited)

	now = now.Add(time.Minute)
	limited, stats = rl.StackBasedRateLimited("a")
	assert.False(t, limited)
	assert.Equal(t, 2, stats.totalOccurCount)
	assert.Equal(t, 1, stats.occurCountSinceLastReport)
}
