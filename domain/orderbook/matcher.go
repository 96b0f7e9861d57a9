package orderbook

import "github.com/shopspring/decimal"

// Match runs one crossing pass over every registered symbol and returns the
// executions in discovery order: slots in registration order, and within a
// slot in the order they were produced. Fully filled orders are compacted
// out before Match returns.
//
// Selection is a linear scan of each side per step.
func (b *OrderBook) Match() []MatchRecord {
	out := make([]MatchRecord, 0)
	for idx := 0; idx < b.registry.Len(); idx++ {
		out = b.cross(idx, out)
	}
	return out
}

func (b *OrderBook) cross(idx int, out []MatchRecord) []MatchRecord {
	s := &b.slots[idx]
	if len(s.buys) == 0 || len(s.sells) == 0 {
		return out
	}

	ticker := b.registry.Ticker(idx)
	doneBuys := make([]bool, len(s.buys))
	doneSells := make([]bool, len(s.sells))
	var filledBuys, filledSells []int

	for {
		bi := best(s.buys, doneBuys, higher)
		if bi < 0 {
			break
		}
		si := best(s.sells, doneSells, lower)
		if si < 0 {
			break
		}

		buy, sell := s.buys[bi], s.sells[si]
		if buy.Price.LessThan(sell.Price) {
			break
		}

		qty := min(buy.Quantity, sell.Quantity)
		out = append(out, MatchRecord{
			BuyOrderID:  buy.ID,
			SellOrderID: sell.ID,
			Symbol:      ticker,
			Quantity:    qty,
			Price:       sell.Price,
		})

		buy.Quantity -= qty
		sell.Quantity -= qty

		if buy.Quantity == 0 {
			doneBuys[bi] = true
			filledBuys = append(filledBuys, bi)
		}
		if sell.Quantity == 0 {
			doneSells[si] = true
			filledSells = append(filledSells, si)
		}
	}

	b.compact(idx, Buy, filledBuys)
	b.compact(idx, Sell, filledSells)
	return out
}

// ranks reports whether price a is strictly better than price b for a side.
type ranks func(a, b decimal.Decimal) bool

func higher(a, b decimal.Decimal) bool { return a.GreaterThan(b) }

func lower(a, b decimal.Decimal) bool { return a.LessThan(b) }

// best returns the index of the highest-priority order not yet filled in
// this pass, or -1. Equal prices fall back to the lower sequence number.
func best(orders []*Order, done []bool, better ranks) int {
	idx := -1
	for i, o := range orders {
		if done[i] {
			continue
		}
		if idx < 0 {
			idx = i
			continue
		}
		cur := orders[idx]
		if better(o.Price, cur.Price) || (o.Price.Equal(cur.Price) && o.Seq < cur.Seq) {
			idx = i
		}
	}
	return idx
}
