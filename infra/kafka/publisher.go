package kafka

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Message is one trade-tape event bound for the broker.
type Message struct {
	Key     []byte
	Value   []byte
	EventID string
}

const eventIDHeader = "event_id"

// Publisher delivers messages synchronously; a nil error means the broker
// acked every message.
type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
	Close() error
}

const (
	DriverSarama  = "sarama"
	DriverKafkaGo = "kafka-go"
	DriverNone    = "none"
)

// New builds the publisher for driver. DriverNone returns (nil, nil).
func New(driver string, brokers []string, topic string) (Publisher, error) {
	switch driver {
	case DriverNone, "":
		return nil, nil
	case DriverSarama:
		p, err := NewSaramaPublisher(brokers, topic)
		if err != nil {
			return nil, err
		}
		return p, nil
	case DriverKafkaGo:
		return NewProducer(brokers, topic), nil
	default:
		return nil, errors.Newf("kafka: unknown driver %q", driver)
	}
}
