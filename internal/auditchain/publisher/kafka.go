// Package publisher streams committed audit entries to Kafka for downstream
// compliance consumers, such as the ITSS export pipeline.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"shiftguard/internal/domain"
)

// Kafka publishes audit entries to a single topic, keyed by chain ID so a
// chain's entries stay ordered within their partition.
type Kafka struct {
	client *kgo.Client
	topic  string
}

// NewKafka connects to the given brokers. Returns nil when no brokers are
// configured so callers can wire the publisher unconditionally.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Kafka{client: client, topic: topic}, nil
}

// Publish produces one entry synchronously. The audit service treats export
// as best-effort; the durable store already holds the entry.
func (k *Kafka) Publish(ctx context.Context, entry domain.AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(entry.ChainID),
		Value: payload,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit entry: %w", err)
	}
	return nil
}

// Close flushes and shuts down the producer.
func (k *Kafka) Close() {
	if k != nil && k.client != nil {
		k.client.Close()
	}
}
