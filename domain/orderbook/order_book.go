package orderbook

import (
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"crossbook/infra/memory"
	"crossbook/infra/sequence"
)

// Sequencer issues arrival numbers used for time priority.
type Sequencer interface {
	Next() uint64
}

// OrderBook holds resting orders for up to Capacity() tickers.
// It is single-writer and deterministic.
type OrderBook struct {
	registry *Registry
	slots    []slot
	seq      Sequencer
	pool     *memory.Pool[Order]

	lastID  uint64
	resting int
}

// slot owns the resting collections of one ticker. Neither side is sorted.
type slot struct {
	buys  []*Order
	sells []*Order
}

// NewOrderBook creates a book for up to capacity tickers (<= 0 selects
// DefaultCapacity). A nil seq gives the book its own sequencer; pass a shared
// one to keep arrival order global across books.
func NewOrderBook(capacity int, seq Sequencer) *OrderBook {
	reg := NewRegistry(capacity)
	if seq == nil {
		seq = sequence.New(0)
	}
	return &OrderBook{
		registry: reg,
		slots:    make([]slot, reg.Cap()),
		seq:      seq,
		pool:     memory.NewPool(func() *Order { return &Order{} }),
	}
}

// Submit validates and rests a new limit order, returning its order id.
// Validation and registration happen before any id or sequence number is
// issued, so a rejected submission leaves the book untouched.
func (b *OrderBook) Submit(side Side, ticker string, qty int64, price decimal.Decimal) (uint64, error) {
	if side != Buy && side != Sell {
		return 0, errors.Wrapf(ErrInvalidSide, "side %d", side)
	}
	if qty <= 0 {
		return 0, errors.Wrapf(ErrInvalidQuantity, "quantity %d", qty)
	}
	if price.Sign() <= 0 {
		return 0, errors.Wrapf(ErrInvalidPrice, "price %s", price)
	}

	idx, err := b.registry.Register(ticker)
	if err != nil {
		return 0, err
	}

	b.lastID++
	o := b.pool.Get()
	*o = Order{
		ID:       b.lastID,
		Seq:      b.seq.Next(),
		Side:     side,
		Slot:     idx,
		Quantity: qty,
		Price:    price,
	}
	b.insert(o)

	return o.ID, nil
}

// insert appends o to its slot and side. O(1) amortized, no ordering.
func (b *OrderBook) insert(o *Order) {
	s := &b.slots[o.Slot]
	if o.Side == Buy {
		s.buys = append(s.buys, o)
	} else {
		s.sells = append(s.sells, o)
	}
	b.resting++
}

// compact removes the orders at the given indices from one side of a slot.
// Survivors keep their relative order. Out-of-range and repeated indices
// are ignored.
func (b *OrderBook) compact(idx int, side Side, completed []int) {
	if len(completed) == 0 {
		return
	}

	orders := b.collection(idx, side)
	drop := make([]bool, len(*orders))
	for _, i := range completed {
		if i >= 0 && i < len(drop) {
			drop[i] = true
		}
	}

	kept := (*orders)[:0]
	for i, o := range *orders {
		if drop[i] {
			b.pool.Put(o)
			b.resting--
			continue
		}
		kept = append(kept, o)
	}
	clear((*orders)[len(kept):])
	*orders = kept
}

func (b *OrderBook) collection(idx int, side Side) *[]*Order {
	if side == Buy {
		return &b.slots[idx].buys
	}
	return &b.slots[idx].sells
}

// ---- introspection ----

// Capacity returns the maximum number of distinct tickers.
func (b *OrderBook) Capacity() int { return b.registry.Cap() }

// Symbols lists registered symbols in registration order.
func (b *OrderBook) Symbols() []Symbol { return b.registry.Symbols() }

// Resting returns the number of orders currently resting on both sides.
func (b *OrderBook) Resting() int { return b.resting }

// LastOrderID returns the most recently issued order id (0 if none).
func (b *OrderBook) LastOrderID() uint64 { return b.lastID }
