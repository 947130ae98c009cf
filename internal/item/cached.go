package item

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
)

const itemInfoCacheKeyFormat = "item:%v:info"

// cachedRepository reads items through a redis json cache in front of next.
// Items never change once saved, so a cached copy is never stale.
type cachedRepository struct {
	client redis.UniversalClient
	next   Repository
	ttl    time.Duration
}

// NewCachedRepository wraps next with a redis cache. When next is nil redis is the
// only store and cached entries must not expire, so ttl is ignored.
func NewCachedRepository(client redis.UniversalClient, next Repository, ttl time.Duration) Repository {
	if next == nil {
		ttl = 0
	}
	return &cachedRepository{client: client, next: next, ttl: ttl}
}

func cacheKey(postID string) string {
	return fmt.Sprintf(itemInfoCacheKeyFormat, postID)
}

func (r *cachedRepository) Get(ctx context.Context, postID string) (*Item, error) {
	result, err := r.client.Get(ctx, cacheKey(postID)).Result()
	if err == nil {
		var it Item
		if err := json.Unmarshal([]byte(result), &it); err != nil {
			return nil, errors.WrapAndReport(err, "unmarshal cached item")
		}
		return &it, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, errors.WrapAndReport(err, "query item from cache")
	}
	if r.next == nil {
		return nil, ErrItemNotFound
	}
	it, err := r.next.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := r.store(ctx, it); err != nil {
		// the item was found, a cold cache only costs the next lookup
		log.Warnf("cache item %v:%v", postID, err)
	}
	return it, nil
}

func (r *cachedRepository) Save(ctx context.Context, item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if r.next != nil {
		if err := r.next.Save(ctx, item); err != nil {
			return err
		}
		// next keeps the first save of a post id, let the next Get read that one
		err := r.client.Del(ctx, cacheKey(item.PostID)).Err()
		return errors.WrapAndReport(err, "evict cached item")
	}
	bts, err := json.Marshal(item)
	if err != nil {
		return errors.WrapAndReport(err, "marshal item")
	}
	err = r.client.SetNX(ctx, cacheKey(item.PostID), string(bts), 0).Err()
	return errors.WrapAndReport(err, "save item to cache")
}

func (r *cachedRepository) store(ctx context.Context, item *Item) error {
	bts, err := json.Marshal(item)
	if err != nil {
		return errors.WrapAndReport(err, "marshal item")
	}
	err = r.client.Set(ctx, cacheKey(item.PostID), string(bts), r.ttl).Err()
	return errors.WrapAndReport(err, "cache item")
}
