package databus

import (
	"strings"

	"github.com/Shopify/sarama"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
)

type Event interface {
	Serialize() []byte
	// Kind names the event, DataBus maps it onto a topic.
	Kind() string
}

type Publisher interface {
	Publish(e Event) error
}

type DataBus struct {
	producer sarama.SyncProducer
	topics   map[string]string
}

// NewDataBus creates a sync kafka producer on the comma separated hosts. topics maps
// event kinds onto kafka topics; unmapped kinds are published on a topic of their name.
func NewDataBus(host string, topics map[string]string) (*DataBus, error) {
	hosts := strings.Split(host, ",")
	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	conf.Producer.RequiredAcks = sarama.WaitForLocal
	p, err := sarama.NewSyncProducer(hosts, conf)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}
	log.Info("Kafka producer initialized...")
	return &DataBus{producer: p, topics: topics}, nil
}

func (db *DataBus) topicOf(e Event) string {
	if topic, ok := db.topics[e.Kind()]; ok && topic != "" {
		return topic
	}
	return e.Kind()
}

func (db *DataBus) PublishRaw(topic string, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	partition, offset, err := db.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(raw)})
	if err != nil {
		return errors.WrapAndReport(err, "produce message")
	}
	log.Debugf("produce message success-partition: %d, offset: %d", partition, offset)
	return nil
}

func (db *DataBus) Publish(e Event) error {
	return db.PublishRaw(db.topicOf(e), e.Serialize())
}

func (db *DataBus) Close() error {
	return errors.Wrap(db.producer.Close(), "close kafka producer")
}

// LocalBus only logs events, used when no kafka servers are configured.
type LocalBus struct{}

func (LocalBus) Publish(e Event) error {
	log.Infof("event %s: %s", e.Kind(), string(e.Serialize()))
	return nil
}
