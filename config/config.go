package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"crossbook/domain/orderbook"
	"crossbook/infra/kafka"
)

// Config holds everything cmd/server needs. Zero fields take defaults.
type Config struct {
	TickerCapacity int

	GRPCAddr string
	HTTPAddr string

	// MatchInterval drives periodic matching passes; 0 leaves matching to
	// explicit Match calls.
	MatchInterval time.Duration

	OutboxDir         string
	Serializer        string
	KafkaDriver       string
	KafkaBrokers      []string
	KafkaTopic        string
	BroadcastInterval time.Duration
	BroadcastBatch    int
	// BroadcastMaxRetries caps delivery attempts per match event before it
	// is parked as FAILED.
	BroadcastMaxRetries uint32

	LogLevel string
	DevLog   bool
}

// Defaults returns a config with every default applied.
func Defaults() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.TickerCapacity <= 0 {
		c.TickerCapacity = orderbook.DefaultCapacity
	}
	if c.GRPCAddr == "" {
		c.GRPCAddr = ":50051"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.Serializer == "" {
		c.Serializer = "json"
	}
	if c.KafkaDriver == "" {
		c.KafkaDriver = kafka.DriverNone
	}
	if len(c.KafkaBrokers) == 0 {
		c.KafkaBrokers = []string{"localhost:9092"}
	}
	if c.KafkaTopic == "" {
		c.KafkaTopic = "crossbook.matches"
	}
	if c.BroadcastInterval <= 0 {
		c.BroadcastInterval = 250 * time.Millisecond
	}
	if c.BroadcastBatch <= 0 {
		c.BroadcastBatch = 512
	}
	if c.BroadcastMaxRetries == 0 {
		c.BroadcastMaxRetries = 10
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch c.KafkaDriver {
	case kafka.DriverNone, kafka.DriverSarama, kafka.DriverKafkaGo:
	default:
		return errors.Newf("config: unknown kafka driver %q", c.KafkaDriver)
	}
	if c.KafkaDriver != kafka.DriverNone && c.OutboxDir == "" {
		return errors.New("config: kafka publishing requires an outbox dir")
	}
	switch c.Serializer {
	case "json", "proto":
	default:
		return errors.Newf("config: unknown serializer %q", c.Serializer)
	}
	if c.MatchInterval < 0 {
		return errors.New("config: match interval must not be negative")
	}
	return nil
}

// SplitList parses a comma-separated flag value, dropping empty entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
