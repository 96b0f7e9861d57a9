package orderbook

import (
	"cmp"
	"slices"
)

// BookSnapshot is a copy of one symbol's resting orders in stored order.
// Mutating it never affects the book.
type BookSnapshot struct {
	Symbol Symbol
	Buys   []Order
	Sells  []Order
}

// ByPriority returns a copy with buys ranked highest price first and sells
// lowest price first, earlier arrival first on equal price.
func (s BookSnapshot) ByPriority() BookSnapshot {
	out := BookSnapshot{
		Symbol: s.Symbol,
		Buys:   slices.Clone(s.Buys),
		Sells:  slices.Clone(s.Sells),
	}
	slices.SortStableFunc(out.Buys, func(a, b Order) int {
		if c := b.Price.Cmp(a.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	slices.SortStableFunc(out.Sells, func(a, b Order) int {
		if c := a.Price.Cmp(b.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	return out
}

// Snapshot copies the resting orders of ticker. ok is false for an
// unregistered ticker; lookup never registers.
func (b *OrderBook) Snapshot(ticker string) (BookSnapshot, bool) {
	idx, ok := b.registry.Lookup(ticker)
	if !ok {
		return BookSnapshot{}, false
	}
	return b.snapshotSlot(idx), true
}

// Snapshots copies every registered symbol in registration order.
func (b *OrderBook) Snapshots() []BookSnapshot {
	out := make([]BookSnapshot, b.registry.Len())
	for i := range out {
		out[i] = b.snapshotSlot(i)
	}
	return out
}

func (b *OrderBook) snapshotSlot(idx int) BookSnapshot {
	s := &b.slots[idx]
	return BookSnapshot{
		Symbol: Symbol{Ticker: b.registry.Ticker(idx), Slot: idx},
		Buys:   copyOrders(s.buys),
		Sells:  copyOrders(s.sells),
	}
}

func copyOrders(src []*Order) []Order {
	out := make([]Order, len(src))
	for i, o := range src {
		out[i] = *o
	}
	return out
}
