// Package service is the only write entry point into the matching core.
//
// OrderService serializes every call into one OrderBook, so a submission
// and a full matching pass never interleave. Emitted match records are
// optionally encoded and handed to a MatchSink (the outbox) for delivery.
package service
