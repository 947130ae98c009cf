package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type ledgerFactory func(t *testing.T, c *clock) Ledger

func newTestRedisLedger(t *testing.T, c *clock) Ledger {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &redisLedger{client: client, now: c.now}
}

func newTestMemoryLedger(_ *testing.T, c *clock) Ledger {
	return newMemoryLedger(c.now)
}

var factories = map[string]ledgerFactory{
	"redis":  newTestRedisLedger,
	"memory": newTestMemoryLedger,
}

func forEachLedger(t *testing.T, fn func(t *testing.T, l Ledger, c *clock)) {
	for name, factory := range factories {
		factory := factory
		t.Run(name, func(t *testing.T) {
			c := &clock{t: time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)}
			fn(t, factory(t, c), c)
		})
	}
}

func TestLedger_EmptyState(t *testing.T) {
	forEachLedger(t, func(t *testing.T, l Ledger, _ *clock) {
		ctx := context.Background()

		stats, err := l.UserStats(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, Stats{}, stats)

		owned, err := l.UserCollectibles(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, owned)

		claimed, err := l.HasClaimed(ctx, "p1", "alice")
		require.NoError(t, err)
		assert.False(t, claimed)

		failed, err := l.HasFailed(ctx, "p1", "alice")
		require.NoError(t, err)
		assert.False(t, failed)

		count, err := l.ClaimCount(ctx, "p1")
		require.NoError(t, err)
		assert.Zero(t, count)

		claimants, err := l.Claimants(ctx, "p1")
		require.NoError(t, err)
		assert.Empty(t, claimants)
	})
}

func TestLedger_RecordCorrect(t *testing.T) {
	forEachLedger(t, func(t *testing.T, l Ledger, c *clock) {
		ctx := context.Background()

		count, err := l.RecordCorrect(ctx, "p1", "alice", "Aegis")
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		c.advance(time.Second)
		count, err = l.RecordCorrect(ctx, "p1", "bob", "Aegis")
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)

		stats, err := l.UserStats(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, Stats{Right: 1}, stats)

		owned, err := l.UserCollectibles(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"Aegis"}, owned)

		claimed, err := l.HasClaimed(ctx, "p1", "alice")
		require.NoError(t, err)
		assert.True(t, claimed)

		failed, err := l.HasFailed(ctx, "p1", "alice")
		require.NoError(t, err)
		assert.False(t, failed)

		claimants, err := l.Claimants(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, claimants, 2)
		assert.Equal(t, "alice", claimants[0].Username)
		assert.Equal(t, "bob", claimants[1].Username)
		assert.True(t, claimants[0].ClaimedAt.Before(claimants[1].ClaimedAt))
	})
}

func TestLedger_RecordCorrectSameUserTwiceKeepsOneClaimant(t *testing.T) {
	forEachLedger(t, func(t *testing.T, l Ledger, c *clock) {
		ctx := context.Background()
		first := c.now()

		_, err := l.RecordCorrect(ctx, "p1", "alice", "Aegis")
		require.NoError(t, err)
		c.advance(time.Minute)
		count, err := l.RecordCorrect(ctx, "p1", "alice", "Aegis")
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		claimants, err := l.Claimants(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, claimants, 1)
		assert.Equal(t, first.UnixMilli(), claimants[0].ClaimedAt.UnixMilli())
	})
}

func TestLedger_RecordWrong(t *testing.T) {
	forEachLedger(t, func(t *testing.T, l Ledger, _ *clock) {
		ctx := context.Background()

		require.NoError(t, l.RecordWrong(ctx, "p1", "alice"))
		require.NoError(t, l.RecordWrong(ctx, "p2", "alice"))

		stats, err := l.UserStats(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, Stats{Wrong: 2}, stats)

		failed, err := l.HasFailed(ctx, "p1", "alice")
		require.NoError(t, err)
		assert.True(t, failed)

		claimed, err := l.HasClaimed(ctx, "p1", "alice")
		require.NoError(t, err)
		assert.False(t, claimed)

		count, err := l.ClaimCount(ctx, "p1")
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestLedger_CollectiblesAreDistinctNames(t *testing.T) {
	forEachLedger(t, func(t *testing.T, l Ledger, _ *clock) {
		ctx := context.Background()

		_, err := l.RecordCorrect(ctx, "p1", "alice", "Aegis")
		require.NoError(t, err)
		_, err = l.RecordCorrect(ctx, "p2", "alice", "Aegis")
		require.NoError(t, err)
		_, err = l.RecordCorrect(ctx, "p3", "alice", "Caduceus")
		require.NoError(t, err)

		owned, err := l.UserCollectibles(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"Aegis", "Caduceus"}, owned)

		stats, err := l.UserStats(ctx, "alice")
		require.NoError(t, err)
		assert.EqualValues(t, 3, stats.Right)
	})
}

func TestRedisLedger_KeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	l := &redisLedger{client: client, now: func() time.Time { return time.UnixMilli(1700000000123) }}
	ctx := context.Background()

	_, err := l.RecordCorrect(ctx, "t3_abc", "alice", "Aegis")
	require.NoError(t, err)
	require.NoError(t, l.RecordWrong(ctx, "t3_def", "alice"))

	right, err := mr.Get("user:alice:right")
	require.NoError(t, err)
	assert.Equal(t, "1", right)
	wrong, err := mr.Get("user:alice:wrong")
	require.NoError(t, err)
	assert.Equal(t, "1", wrong)
	assert.Equal(t, "Aegis", mr.HGet("user:alice:collectibles", "item:t3_abc"))
	assert.True(t, mr.Exists("item:t3_abc:claimed:alice"))
	assert.True(t, mr.Exists("item:t3_def:failed:alice"))
	score, err := mr.ZScore("item:t3_abc:claimedUsers", "alice")
	require.NoError(t, err)
	assert.Equal(t, float64(1700000000123), score)
}

func TestRedisLedger_StoreFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	l := NewRedisLedger(client)
	mr.Close()

	_, err := l.UserStats(context.Background(), "alice")
	assert.Error(t, err)
	_, err = l.RecordCorrect(context.Background(), "p1", "alice", "Aegis")
	assert.Error(t, err)
	assert.Error(t, l.RecordWrong(context.Background(), "p1", "alice"))
}
