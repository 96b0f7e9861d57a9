package orderbook

import "github.com/cockroachdb/errors"

// DefaultCapacity is the number of distinct tickers a book accepts by default.
const DefaultCapacity = 1024

// Symbol is a registered ticker and the slot it was assigned.
type Symbol struct {
	Ticker string
	Slot   int
}

// Registry maps tickers to slots in first-seen order.
// Lookup is a linear scan bounded by capacity; slot i is the i-th ticker seen.
type Registry struct {
	capacity int
	tickers  []string
}

func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		capacity: capacity,
		tickers:  make([]string, 0, min(capacity, 64)),
	}
}

// Lookup returns the slot of an already registered ticker.
func (r *Registry) Lookup(ticker string) (int, bool) {
	for i, t := range r.tickers {
		if t == ticker {
			return i, true
		}
	}
	return -1, false
}

// Register returns the ticker's slot, assigning the next free one on first
// sight. At capacity an unseen ticker fails and the registry is unchanged.
func (r *Registry) Register(ticker string) (int, error) {
	if ticker == "" {
		return -1, ErrEmptyTicker
	}
	if slot, ok := r.Lookup(ticker); ok {
		return slot, nil
	}
	if len(r.tickers) >= r.capacity {
		return -1, errors.Wrapf(ErrTickerCapacityExceeded,
			"ticker %q: %d of %d slots in use", ticker, len(r.tickers), r.capacity)
	}
	r.tickers = append(r.tickers, ticker)
	return len(r.tickers) - 1, nil
}

func (r *Registry) Len() int { return len(r.tickers) }

func (r *Registry) Cap() int { return r.capacity }

// Ticker returns the ticker held by slot, or "" for an unassigned slot.
func (r *Registry) Ticker(slot int) string {
	if slot < 0 || slot >= len(r.tickers) {
		return ""
	}
	return r.tickers[slot]
}

// Symbols lists every registered symbol in registration order.
func (r *Registry) Symbols() []Symbol {
	out := make([]Symbol, len(r.tickers))
	for i, t := range r.tickers {
		out[i] = Symbol{Ticker: t, Slot: i}
	}
	return out
}
