package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/emirpasic/gods/sets/treeset"
	"gopkg.in/fatih/set.v0"
)

// memoryLedger keeps the whole ledger in process. It backs the memory game store
// used for local runs and the evaluator tests.
type memoryLedger struct {
	mu           sync.Mutex
	now          func() time.Time
	stats        map[string]*Stats
	collectibles map[string]map[string]string
	claimed      set.Interface
	failed       set.Interface
	claimants    map[string]*treeset.Set
	claimantSet  map[string]set.Interface
}

func NewMemoryLedger() Ledger {
	return newMemoryLedger(time.Now)
}

func newMemoryLedger(now func() time.Time) *memoryLedger {
	return &memoryLedger{
		now:          now,
		stats:        make(map[string]*Stats),
		collectibles: make(map[string]map[string]string),
		claimed:      set.New(set.NonThreadSafe),
		failed:       set.New(set.NonThreadSafe),
		claimants:    make(map[string]*treeset.Set),
		claimantSet:  make(map[string]set.Interface),
	}
}

func byClaimTime(a, b interface{}) int {
	ca, cb := a.(Claimant), b.(Claimant)
	switch {
	case ca.ClaimedAt.Before(cb.ClaimedAt):
		return -1
	case ca.ClaimedAt.After(cb.ClaimedAt):
		return 1
	case ca.Username < cb.Username:
		return -1
	case ca.Username > cb.Username:
		return 1
	default:
		return 0
	}
}

func (l *memoryLedger) UserStats(_ context.Context, username string) (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s := l.stats[username]; s != nil {
		return *s, nil
	}
	return Stats{}, nil
}

func (l *memoryLedger) UserCollectibles(_ context.Context, username string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.collectibles[username]))
	for _, name := range l.collectibles[username] {
		names = append(names, name)
	}
	return distinct(names), nil
}

func (l *memoryLedger) HasClaimed(_ context.Context, itemID, username string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.claimed.Has(claimedKey(itemID, username)), nil
}

func (l *memoryLedger) HasFailed(_ context.Context, itemID, username string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failed.Has(failedKey(itemID, username)), nil
}

func (l *memoryLedger) ClaimCount(_ context.Context, itemID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.claimCountLocked(itemID), nil
}

func (l *memoryLedger) claimCountLocked(itemID string) int64 {
	ts := l.claimants[itemID]
	if ts == nil {
		return 0
	}
	return int64(ts.Size())
}

func (l *memoryLedger) statsLocked(username string) *Stats {
	s := l.stats[username]
	if s == nil {
		s = &Stats{}
		l.stats[username] = s
	}
	return s
}

func (l *memoryLedger) RecordCorrect(_ context.Context, itemID, username, collectible string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statsLocked(username).Right++
	owned := l.collectibles[username]
	if owned == nil {
		owned = make(map[string]string)
		l.collectibles[username] = owned
	}
	owned[collectibleField(itemID)] = collectible
	l.claimed.Add(claimedKey(itemID, username))

	members := l.claimantSet[itemID]
	if members == nil {
		members = set.New(set.NonThreadSafe)
		l.claimantSet[itemID] = members
		l.claimants[itemID] = treeset.NewWith(byClaimTime)
	}
	if !members.Has(username) {
		members.Add(username)
		l.claimants[itemID].Add(Claimant{Username: username, ClaimedAt: time.UnixMilli(l.now().UnixMilli())})
	}
	return l.claimCountLocked(itemID), nil
}

func (l *memoryLedger) RecordWrong(_ context.Context, itemID, username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statsLocked(username).Wrong++
	l.failed.Add(failedKey(itemID, username))
	return nil
}

func (l *memoryLedger) Claimants(_ context.Context, itemID string) ([]Claimant, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := l.claimants[itemID]
	if ts == nil {
		return []Claimant{}, nil
	}
	results := make([]Claimant, 0, ts.Size())
	for _, v := range ts.Values() {
		results = append(results, v.(Claimant))
	}
	return results, nil
}
