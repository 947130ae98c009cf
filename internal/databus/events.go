package databus

import (
	"encoding/json"
	"time"
)

const (
	KindCollectibleClaimed = "collectible_claimed"
	KindItemPublished      = "item_published"
)

// CollectibleClaimed is emitted after a correct answer was recorded.
type CollectibleClaimed struct {
	PostID      string    `json:"post_id"`
	Username    string    `json:"username"`
	Collectible string    `json:"collectible"`
	ClaimCount  int64     `json:"claim_count"`
	ClaimedAt   time.Time `json:"claimed_at"`
}

func (in CollectibleClaimed) Kind() string {
	return KindCollectibleClaimed
}

func (in CollectibleClaimed) Serialize() []byte {
	return marshal(in)
}

// ItemPublished is emitted once a new item post is live.
type ItemPublished struct {
	PostID        string    `json:"post_id"`
	SubredditName string    `json:"subreddit_name"`
	Collectible   string    `json:"collectible"`
	SetName       string    `json:"set_name"`
	PublishedAt   time.Time `json:"published_at"`
}

func (in ItemPublished) Kind() string {
	return KindItemPublished
}

func (in ItemPublished) Serialize() []byte {
	return marshal(in)
}

func marshal(v interface{}) []byte {
	bts, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return bts
}
