// Package kafka publishes trade-tape events to Kafka. Two interchangeable
// drivers are provided: IBM/sarama and segmentio/kafka-go.
package kafka
