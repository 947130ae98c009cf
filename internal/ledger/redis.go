package ledger

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"olympus.io/loot-of-olympus/pkg/errors"
)

type redisLedger struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisLedger returns a Ledger over client. Multi-key writes run in MULTI/EXEC.
func NewRedisLedger(client redis.UniversalClient) Ledger {
	return &redisLedger{client: client, now: time.Now}
}

func (l *redisLedger) UserStats(ctx context.Context, username string) (Stats, error) {
	values, err := l.client.MGet(ctx, rightKey(username), wrongKey(username)).Result()
	if err != nil {
		return Stats{}, errors.WrapAndReport(err, "query user stats")
	}
	right, err := parseCounter(values[0])
	if err != nil {
		return Stats{}, errors.WrapfAndReport(err, "parse right count of %v", username)
	}
	wrong, err := parseCounter(values[1])
	if err != nil {
		return Stats{}, errors.WrapfAndReport(err, "parse wrong count of %v", username)
	}
	return Stats{Right: right, Wrong: wrong}, nil
}

func parseCounter(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func (l *redisLedger) UserCollectibles(ctx context.Context, username string) ([]string, error) {
	names, err := l.client.HVals(ctx, collectiblesKey(username)).Result()
	if err != nil {
		return nil, errors.WrapAndReport(err, "query user collectibles")
	}
	return distinct(names), nil
}

func distinct(names []string) []string {
	seen := make(map[string]bool, len(names))
	results := make([]string, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		results = append(results, name)
	}
	sort.Strings(results)
	return results
}

func (l *redisLedger) HasClaimed(ctx context.Context, itemID, username string) (bool, error) {
	n, err := l.client.Exists(ctx, claimedKey(itemID, username)).Result()
	if err != nil {
		return false, errors.WrapAndReport(err, "check claimed flag")
	}
	return n > 0, nil
}

func (l *redisLedger) HasFailed(ctx context.Context, itemID, username string) (bool, error) {
	n, err := l.client.Exists(ctx, failedKey(itemID, username)).Result()
	if err != nil {
		return false, errors.WrapAndReport(err, "check failed flag")
	}
	return n > 0, nil
}

func (l *redisLedger) ClaimCount(ctx context.Context, itemID string) (int64, error) {
	n, err := l.client.ZCard(ctx, claimedUsersKey(itemID)).Result()
	if err != nil {
		return 0, errors.WrapAndReport(err, "count item claimants")
	}
	return n, nil
}

func (l *redisLedger) RecordCorrect(ctx context.Context, itemID, username, collectible string) (int64, error) {
	var card *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.IncrBy(ctx, rightKey(username), 1)
		pipe.HSet(ctx, collectiblesKey(username), collectibleField(itemID), collectible)
		pipe.Set(ctx, claimedKey(itemID, username), "1", 0)
		// NX keeps the first claim time if the same user lands twice
		pipe.ZAddNX(ctx, claimedUsersKey(itemID), &redis.Z{
			Score:  float64(l.now().UnixMilli()),
			Member: username,
		})
		card = pipe.ZCard(ctx, claimedUsersKey(itemID))
		return nil
	})
	if err != nil {
		return 0, errors.WrapAndReport(err, "record correct answer")
	}
	return card.Val(), nil
}

func (l *redisLedger) RecordWrong(ctx context.Context, itemID, username string) error {
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.IncrBy(ctx, wrongKey(username), 1)
		pipe.Set(ctx, failedKey(itemID, username), "1", 0)
		return nil
	})
	return errors.WrapAndReport(err, "record wrong answer")
}

func (l *redisLedger) Claimants(ctx context.Context, itemID string) ([]Claimant, error) {
	members, err := l.client.ZRangeWithScores(ctx, claimedUsersKey(itemID), 0, -1).Result()
	if err != nil {
		return nil, errors.WrapAndReport(err, "query item claimants")
	}
	claimants := make([]Claimant, 0, len(members))
	for _, m := range members {
		username, _ := m.Member.(string)
		claimants = append(claimants, Claimant{
			Username:  username,
			ClaimedAt: time.UnixMilli(int64(m.Score)),
		})
	}
	return claimants, nil
}
