package cache

import (
	"context"
	"fmt"

	"github.com/go-redis/redis_rate/v9"
	"olympus.io/loot-of-olympus/pkg/errors"
)

const submitLimiterKeyPrefix = "answer_submit:"

// SubmitLimiter is a per-minute throttle on answer submissions per (post, user).
// Repeated answers inside the allowance are settled by the ledger flags.
type SubmitLimiter struct {
	limiter *redis_rate.Limiter
	limit   redis_rate.Limit
}

func NewSubmitLimiter(limiter *redis_rate.Limiter, perMinute int) *SubmitLimiter {
	return &SubmitLimiter{
		limiter: limiter,
		limit:   redis_rate.PerMinute(perMinute),
	}
}

func (in *SubmitLimiter) Allow(ctx context.Context, postID, username string) (bool, error) {
	res, err := in.limiter.Allow(ctx, fmt.Sprintf("%v%v:%v", submitLimiterKeyPrefix, postID, username), in.limit)
	if err != nil {
		return false, errors.WrapAndReport(err, "check answer submit rate")
	}
	return res.Allowed > 0, nil
}
