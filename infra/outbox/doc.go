// Package outbox is the durable hand-off between the matching service and
// the trade-tape broadcaster. The matching core itself keeps no durable
// state; only emitted match events are stored here until a broker acks them.
package outbox
