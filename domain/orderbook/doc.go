// Package orderbook implements the matching core: a bounded symbol
// registry, per-symbol resting buy and sell collections, and an on-demand
// crossing pass using price-time priority.
//
// An OrderBook is single-writer. It performs no I/O and no locking; callers
// that share a book across goroutines must serialize every call into it.
package orderbook
