package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// producer is the part of *kgo.Client the Kafka alerter uses.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaAlerter publishes events as JSON records keyed by asset id.
type KafkaAlerter struct {
	topic    string
	producer producer
}

// NewKafkaAlerter connects a producer to brokers.
func NewKafkaAlerter(brokers []string, topic string) (*KafkaAlerter, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka alerter: no brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka alerter: no topic configured")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(10*time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	return &KafkaAlerter{topic: topic, producer: client}, nil
}

// Name returns "kafka".
func (k *KafkaAlerter) Name() string {
	return "kafka"
}

// Send produces the event and waits for the broker acknowledgement.
func (k *KafkaAlerter) Send(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.Asset.ID),
		Value: body,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "severity", Value: []byte(event.Severity)},
		},
	}

	if err := k.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("producing to %s: %w", k.topic, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (k *KafkaAlerter) Close() {
	k.producer.Close()
}
