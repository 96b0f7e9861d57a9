// Package codec turns match records into trade-tape events and encodes
// them for the outbox and the broker.
package codec
