package cache

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"olympus.io/loot-of-olympus/internal/config"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
)

var (
	Redis       *redis.Client
	RateLimiter *redis_rate.Limiter
)

// Init connects the shared redis client and fails hard when redis is unreachable.
func Init(cred *config.DBCredential) {
	cli, err := NewClient(context.TODO(), cred)
	if err != nil {
		log.Fatalf("ping to redis:%v", err)
	}
	Redis = cli
	RateLimiter = redis_rate.NewLimiter(Redis)
	log.Infof("Connected to redis %v...", cred.GetRedisAddress())
}

// NewClient dials redis and pings it once.
func NewClient(ctx context.Context, cred *config.DBCredential) (*redis.Client, error) {
	db, _ := strconv.ParseInt(cred.Database, 10, 64)
	cli := redis.NewClient(&redis.Options{
		Addr:     cred.GetRedisAddress(),
		Password: cred.Password,
		DB:       int(db),
	})
	if _, err := cli.Ping(ctx).Result(); err != nil {
		_ = cli.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return cli, nil
}

func Close() {
	if Redis != nil {
		if err := Redis.Close(); err != nil {
			log.Warnf("close redis:%v", err)
		}
		Redis = nil
	}
}
