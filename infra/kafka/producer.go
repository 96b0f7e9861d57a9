package kafka

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/kafka-go"
)

// Producer publishes through a segmentio/kafka-go Writer.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, toKafkaMessages(msgs)...); err != nil {
		return errors.Wrap(err, "kafka-go: write messages")
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func toKafkaMessages(msgs []Message) []kafka.Message {
	out := make([]kafka.Message, len(msgs))
	for i, m := range msgs {
		out[i] = kafka.Message{
			Key:   m.Key,
			Value: m.Value,
		}
		if m.EventID != "" {
			out[i].Headers = []kafka.Header{{Key: eventIDHeader, Value: []byte(m.EventID)}}
		}
	}
	return out
}
