package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crossbook/infra/kafka"
)

func TestDefaults(t *testing.T) {
	c := Defaults()
	require.Equal(t, 1024, c.TickerCapacity)
	require.Equal(t, ":50051", c.GRPCAddr)
	require.Equal(t, kafka.DriverNone, c.KafkaDriver)
	require.Equal(t, 250*time.Millisecond, c.BroadcastInterval)
	require.Equal(t, uint32(10), c.BroadcastMaxRetries)
	require.NoError(t, c.Validate())
}

func TestApplyDefaultsKeepsSetFields(t *testing.T) {
	c := Config{TickerCapacity: 16, KafkaTopic: "tape"}
	c.ApplyDefaults()
	require.Equal(t, 16, c.TickerCapacity)
	require.Equal(t, "tape", c.KafkaTopic)
}

func TestValidate(t *testing.T) {
	c := Defaults()
	c.KafkaDriver = kafka.DriverSarama
	require.Error(t, c.Validate(), "broker without outbox")

	c.OutboxDir = t.TempDir()
	require.NoError(t, c.Validate())

	c.KafkaDriver = "nats"
	require.Error(t, c.Validate())

	c = Defaults()
	c.Serializer = "xml"
	require.Error(t, c.Validate())

	c = Defaults()
	c.MatchInterval = -time.Second
	require.Error(t, c.Validate())
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"a:1", "b:2"}, SplitList(" a:1, ,b:2,"))
	require.Nil(t, SplitList(""))
}
