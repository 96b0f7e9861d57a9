package sequence_test

import (
	"fmt"

	"github.com/shopspring/decimal"

	"crossbook/domain/orderbook"
	"crossbook/infra/sequence"
)

func Example_sharedAcrossBooks() {
	seq := sequence.New(0)
	east := orderbook.NewOrderBook(0, seq)
	west := orderbook.NewOrderBook(0, seq)

	price := decimal.NewFromInt(10)
	_, _ = east.Submit(orderbook.Buy, "AAPL", 1, price)
	_, _ = west.Submit(orderbook.Sell, "AAPL", 1, price)
	_, _ = east.Submit(orderbook.Sell, "MSFT", 1, price)

	for _, b := range []*orderbook.OrderBook{east, west} {
		for _, snap := range b.Snapshots() {
			for _, o := range append(snap.Buys, snap.Sells...) {
				fmt.Printf("%s id=%d seq=%d\n", snap.Symbol.Ticker, o.ID, o.Seq)
			}
		}
	}
	fmt.Println("current:", seq.Current())

	// Output:
	// AAPL id=1 seq=1
	// MSFT id=2 seq=3
	// AAPL id=1 seq=2
	// current: 3
}
