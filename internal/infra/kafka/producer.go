// Package kafka publishes book summaries to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes one summary per call, keyed by product so that a product's
// summaries stay ordered on a single partition. Writes wait for every in-sync
// replica.
type Producer struct {
	topic string
	w     messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		topic: topic,
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Send publishes value under key. An empty key is rejected, since keyless
// messages would be spread across partitions.
func (p *Producer) Send(ctx context.Context, key, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kafka %s: empty message key", p.topic)
	}
	msg := kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka %s: write %s: %w", p.topic, key, err)
	}
	return nil
}

func (p *Producer) Close() error { return p.w.Close() }
