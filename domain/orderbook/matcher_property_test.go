package orderbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

type submitted struct {
	order  Order
	filled int64
}

func drawBook(t *rapid.T) (*OrderBook, map[uint64]*submitted) {
	b := NewOrderBook(8, nil)
	orders := make(map[uint64]*submitted)

	n := rapid.IntRange(0, 40).Draw(t, "n")
	for i := 0; i < n; i++ {
		side := Buy
		if rapid.Bool().Draw(t, "sell") {
			side = Sell
		}
		ticker := rapid.SampledFrom([]string{"AAPL", "MSFT", "TSLA"}).Draw(t, "ticker")
		qty := rapid.Int64Range(1, 50).Draw(t, "qty")
		cents := rapid.Int64Range(1, 2000).Draw(t, "cents")
		price := decimal.New(cents, -2)

		id, err := b.Submit(side, ticker, qty, price)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		orders[id] = &submitted{order: Order{ID: id, Side: side, Quantity: qty, Price: price}}
	}
	return b, orders
}

func TestProperty_ExecutionPriceIsSellPrice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b, orders := drawBook(t)

		for _, m := range b.Match() {
			buy, sell := orders[m.BuyOrderID], orders[m.SellOrderID]
			if buy == nil || sell == nil {
				t.Fatalf("match references unknown order: %+v", m)
			}
			if buy.order.Side != Buy || sell.order.Side != Sell {
				t.Fatalf("sides swapped in %+v", m)
			}
			if !m.Price.Equal(sell.order.Price) {
				t.Fatalf("execution price %s != sell price %s", m.Price, sell.order.Price)
			}
			if buy.order.Price.LessThan(sell.order.Price) {
				t.Fatalf("uncrossed pair matched: buy %s < sell %s", buy.order.Price, sell.order.Price)
			}
			if m.Quantity <= 0 {
				t.Fatalf("non-positive match quantity %d", m.Quantity)
			}
		}
	})
}

func TestProperty_Conservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b, orders := drawBook(t)

		var matchedBuy, matchedSell, totalBuy, totalSell int64
		for _, o := range orders {
			if o.order.Side == Buy {
				totalBuy += o.order.Quantity
			} else {
				totalSell += o.order.Quantity
			}
		}

		for _, m := range b.Match() {
			orders[m.BuyOrderID].filled += m.Quantity
			orders[m.SellOrderID].filled += m.Quantity
			matchedBuy += m.Quantity
			matchedSell += m.Quantity
		}
		if matchedBuy > min(totalBuy, totalSell) {
			t.Fatalf("matched %d exceeds thinner side %d", matchedBuy, min(totalBuy, totalSell))
		}

		resting := make(map[uint64]Order)
		for _, snap := range b.Snapshots() {
			for _, o := range append(snap.Buys, snap.Sells...) {
				if o.Quantity <= 0 {
					t.Fatalf("resting order %d has quantity %d", o.ID, o.Quantity)
				}
				resting[o.ID] = o
			}
		}

		for id, o := range orders {
			if o.filled > o.order.Quantity {
				t.Fatalf("order %d overfilled: %d > %d", id, o.filled, o.order.Quantity)
			}
			left := o.order.Quantity - o.filled
			r, ok := resting[id]
			switch {
			case left == 0 && ok:
				t.Fatalf("filled order %d still resting", id)
			case left > 0 && !ok:
				t.Fatalf("order %d with %d left missing from book", id, left)
			case ok && r.Quantity != left:
				t.Fatalf("order %d rests with %d, want %d", id, r.Quantity, left)
			}
		}
		if b.Resting() != len(resting) {
			t.Fatalf("resting count %d != %d", b.Resting(), len(resting))
		}
	})
}

func TestProperty_BookUncrossedAfterMatch(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b, _ := drawBook(t)
		b.Match()

		for _, snap := range b.Snapshots() {
			ranked := snap.ByPriority()
			if len(ranked.Buys) == 0 || len(ranked.Sells) == 0 {
				continue
			}
			if !ranked.Buys[0].Price.LessThan(ranked.Sells[0].Price) {
				t.Fatalf("%s still crossed: bid %s ask %s",
					snap.Symbol.Ticker, ranked.Buys[0].Price, ranked.Sells[0].Price)
			}
		}

		if again := b.Match(); len(again) != 0 {
			t.Fatalf("second pass produced %d matches", len(again))
		}
	})
}
