package common

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// PostIDEpoch is the snowflake epoch for post ids (2024-01-01T00:00:00Z).
const PostIDEpoch int64 = 1704067200000

func init() {
	snowflake.Epoch = PostIDEpoch
}

// NewCutUUIDString returns uuid string that cut `-`.
func NewCutUUIDString() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewIDNode returns a snowflake node, node must be within [0, 1023].
func NewIDNode(node int64) (*snowflake.Node, error) {
	return snowflake.NewNode(node)
}

// DecodeTimeInSnowflake returns the creation time embedded in a snowflake id.
func DecodeTimeInSnowflake(id string) *time.Time {
	sid, err := snowflake.ParseString(id)
	if err != nil {
		log.Errorf("parse snowflake id %v:%v", id, err)
		return nil
	}
	t := time.UnixMilli(sid.Time())
	return &t
}
