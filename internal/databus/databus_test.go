package databus

import (
	"errors"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCollectibleClaimed_Serialize(t *testing.T) {
	e := CollectibleClaimed{
		PostID:      "t3_abc",
		Username:    "alice",
		Collectible: "Aegis",
		ClaimCount:  3,
		ClaimedAt:   time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	raw := e.Serialize()
	assert.Equal(t, KindCollectibleClaimed, e.Kind())
	assert.Equal(t, "t3_abc", gjson.GetBytes(raw, "post_id").String())
	assert.Equal(t, "Aegis", gjson.GetBytes(raw, "collectible").String())
	assert.EqualValues(t, 3, gjson.GetBytes(raw, "claim_count").Int())
}

func TestDataBus_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if gjson.GetBytes(val, "username").String() != "alice" {
			return errors.New("unexpected username")
		}
		return nil
	})
	bus := &DataBus{producer: producer, topics: map[string]string{KindCollectibleClaimed: "claims"}}

	require.NoError(t, bus.Publish(CollectibleClaimed{PostID: "p1", Username: "alice"}))
	assert.Equal(t, "claims", bus.topicOf(CollectibleClaimed{}))
	assert.Equal(t, KindItemPublished, bus.topicOf(ItemPublished{}))
	require.NoError(t, producer.Close())
}

func TestDataBus_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	bus := &DataBus{producer: producer}

	err := bus.Publish(ItemPublished{PostID: "p1"})
	assert.Error(t, err)
	require.NoError(t, producer.Close())
}

func TestLocalBus_Publish(t *testing.T) {
	assert.NoError(t, LocalBus{}.Publish(ItemPublished{PostID: "p1"}))
}
