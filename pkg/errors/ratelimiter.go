package errors

import (
	"sync"
	"time"
)

type rateLimiter struct {
	lock   sync.Mutex
	silent time.Duration
	buffer map[string]*errorStats
	now    func() time.Time
}

func newRateLimiter(silent time.Duration) *rateLimiter {
	return &rateLimiter{
		silent: silent,
		buffer: map[string]*errorStats{},
		now:    time.Now,
	}
}

type errorStats struct {
	totalOccurCount int
	// occurrences swallowed since the last report went out
	occurCountSinceLastReport int
	lastReportTime            *time.Time
}

func (in *errorStats) Copy() *errorStats {
	return &errorStats{
		totalOccurCount:           in.totalOccurCount,
		occurCountSinceLastReport: in.occurCountSinceLastReport,
		lastReportTime:            in.lastReportTime,
	}
}

// StackBasedRateLimited reports whether an error raised at stack should be swallowed.
// The returned stats are a snapshot taken before this occurrence was counted.
func (b *rateLimiter) StackBasedRateLimited(stack string) (bool, *errorStats) {
	b.lock.Lock()
	defer b.lock.Unlock()
	stats := b.buffer[stack]
	if stats == nil {
		stats = &errorStats{}
		b.buffer[stack] = stats
	}
	cp := stats.Copy()
	now := b.now()
	stats.totalOccurCount++
	if stats.lastReportTime != nil && now.Sub(*stats.lastReportTime) < b.silent {
		stats.occurCountSinceLastReport++
		return true, cp
	}
	stats.occurCountSinceLastReport = 0
	stats.lastReportTime = &now
	return false, cp
}
