// Package ledger persists per-user counters and collectibles, per (item, user)
// one-shot claim/fail flags and the per-item claimant ledger. It holds no game rules.
package ledger

import (
	"context"
	"fmt"
	"time"
)

// Stats are the global right/wrong answer totals of one user.
type Stats struct {
	Right int64 `json:"right"`
	Wrong int64 `json:"wrong"`
}

// Claimant is one entry of an item's claimant ledger.
type Claimant struct {
	Username  string    `json:"username"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// Ledger is the storage boundary of the game. Every method is a bounded number of
// store round trips and returns store failures unchanged in kind, without retrying.
type Ledger interface {
	UserStats(ctx context.Context, username string) (Stats, error)
	// UserCollectibles returns the distinct collectible names owned by username.
	UserCollectibles(ctx context.Context, username string) ([]string, error)
	HasClaimed(ctx context.Context, itemID, username string) (bool, error)
	HasFailed(ctx context.Context, itemID, username string) (bool, error)
	// ClaimCount is the size of the item's claimant ledger.
	ClaimCount(ctx context.Context, itemID string) (int64, error)
	// RecordCorrect bumps the right count, grants the collectible, sets the claimed flag
	// and appends username to the claimant ledger. It returns the claim count afterwards.
	RecordCorrect(ctx context.Context, itemID, username, collectible string) (int64, error)
	// RecordWrong bumps the wrong count and sets the failed flag.
	RecordWrong(ctx context.Context, itemID, username string) error
	// Claimants lists the claimant ledger ordered by claim time.
	Claimants(ctx context.Context, itemID string) ([]Claimant, error)
}

const (
	userKeyPrefix = "user:"
	itemKeyPrefix = "item:"
)

func rightKey(username string) string {
	return fmt.Sprintf("%v%v:right", userKeyPrefix, username)
}

func wrongKey(username string) string {
	return fmt.Sprintf("%v%v:wrong", userKeyPrefix, username)
}

// hash of item:{postId} => collectible name
func collectiblesKey(username string) string {
	return fmt.Sprintf("%v%v:collectibles", userKeyPrefix, username)
}

func collectibleField(itemID string) string {
	return itemKeyPrefix + itemID
}

func claimedKey(itemID, username string) string {
	return fmt.Sprintf("%v%v:claimed:%v", itemKeyPrefix, itemID, username)
}

func failedKey(itemID, username string) string {
	return fmt.Sprintf("%v%v:failed:%v", itemKeyPrefix, itemID, username)
}

// sorted set of usernames scored by claim time in unix millis
func claimedUsersKey(itemID string) string {
	return fmt.Sprintf("%v%v:claimedUsers", itemKeyPrefix, itemID)
}
