package orderbook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchTimePriorityAtEqualPrice(t *testing.T) {
	b := NewOrderBook(8, nil)
	b1 := mustSubmit(t, b, Buy, "AAPL", 5, "10")
	b2 := mustSubmit(t, b, Buy, "AAPL", 5, "10")
	s1 := mustSubmit(t, b, Sell, "AAPL", 5, "9")

	matches := b.Match()
	require.Len(t, matches, 1)
	require.Equal(t, b1, matches[0].BuyOrderID)
	require.Equal(t, s1, matches[0].SellOrderID)

	snap, _ := b.Snapshot("AAPL")
	require.Len(t, snap.Buys, 1)
	require.Equal(t, b2, snap.Buys[0].ID)
	require.Equal(t, int64(5), snap.Buys[0].Quantity)
}

func TestMatchPartialFill(t *testing.T) {
	b := NewOrderBook(8, nil)
	buy := mustSubmit(t, b, Buy, "AAPL", 10, "10")
	sell := mustSubmit(t, b, Sell, "AAPL", 4, "9")

	matches := b.Match()
	require.Equal(t, []MatchRecord{{
		BuyOrderID:  buy,
		SellOrderID: sell,
		Symbol:      "AAPL",
		Quantity:    4,
		Price:       px("9"),
	}}, matches)

	snap, _ := b.Snapshot("AAPL")
	require.Len(t, snap.Buys, 1)
	require.Equal(t, int64(6), snap.Buys[0].Quantity)
	require.Empty(t, snap.Sells)
	require.Equal(t, 1, b.Resting())
}

func TestMatchNoCross(t *testing.T) {
	b := NewOrderBook(8, nil)
	mustSubmit(t, b, Buy, "AAPL", 3, "9")
	mustSubmit(t, b, Sell, "AAPL", 7, "10")

	require.Empty(t, b.Match())

	snap, _ := b.Snapshot("AAPL")
	require.Equal(t, int64(3), snap.Buys[0].Quantity)
	require.Equal(t, int64(7), snap.Sells[0].Quantity)
}

func TestMatchEqualPricesCross(t *testing.T) {
	b := NewOrderBook(8, nil)
	mustSubmit(t, b, Sell, "AAPL", 2, "10.50")
	mustSubmit(t, b, Buy, "AAPL", 2, "10.5")

	matches := b.Match()
	require.Len(t, matches, 1)
	require.True(t, matches[0].Price.Equal(px("10.5")))
	require.Zero(t, b.Resting())
}

func TestMatchExecutesAtSellPrice(t *testing.T) {
	b := NewOrderBook(8, nil)
	// The sell arrives after the buy and still sets the price.
	mustSubmit(t, b, Buy, "AAPL", 1, "15")
	mustSubmit(t, b, Sell, "AAPL", 1, "11")

	matches := b.Match()
	require.Len(t, matches, 1)
	require.True(t, matches[0].Price.Equal(px("11")))
	require.True(t, matches[0].Notional().Equal(px("11")))
}

func TestMatchPricePriorityBeatsTime(t *testing.T) {
	b := NewOrderBook(8, nil)
	late := mustSubmit(t, b, Sell, "AAPL", 5, "10")
	cheap := mustSubmit(t, b, Sell, "AAPL", 5, "9")
	buy := mustSubmit(t, b, Buy, "AAPL", 10, "10")

	matches := b.Match()
	require.Len(t, matches, 2)

	require.Equal(t, cheap, matches[0].SellOrderID)
	require.True(t, matches[0].Price.Equal(px("9")))
	require.Equal(t, late, matches[1].SellOrderID)
	require.True(t, matches[1].Price.Equal(px("10")))

	for _, m := range matches {
		require.Equal(t, buy, m.BuyOrderID)
		require.Equal(t, int64(5), m.Quantity)
	}
	require.Zero(t, b.Resting())
}

func TestMatchStopsWhenBookUncrosses(t *testing.T) {
	b := NewOrderBook(8, nil)
	mustSubmit(t, b, Buy, "AAPL", 5, "12")
	mustSubmit(t, b, Buy, "AAPL", 5, "10")
	mustSubmit(t, b, Sell, "AAPL", 3, "11")
	mustSubmit(t, b, Sell, "AAPL", 8, "11")

	matches := b.Match()
	require.Len(t, matches, 2)
	require.Equal(t, int64(3), matches[0].Quantity)
	require.Equal(t, int64(2), matches[1].Quantity)

	snap, _ := b.Snapshot("AAPL")
	require.Len(t, snap.Buys, 1)
	require.True(t, snap.Buys[0].Price.Equal(px("10")))
	require.Len(t, snap.Sells, 1)
	require.Equal(t, int64(6), snap.Sells[0].Quantity)
}

func TestMatchEmitsInRegistrationOrder(t *testing.T) {
	b := NewOrderBook(8, nil)
	mustSubmit(t, b, Sell, "MSFT", 1, "300")
	mustSubmit(t, b, Buy, "AAPL", 1, "175")
	mustSubmit(t, b, Sell, "AAPL", 1, "175")
	mustSubmit(t, b, Buy, "MSFT", 1, "301")
	mustSubmit(t, b, Buy, "TSLA", 1, "250")

	matches := b.Match()
	require.Len(t, matches, 2)
	require.Equal(t, "MSFT", matches[0].Symbol)
	require.Equal(t, "AAPL", matches[1].Symbol)

	snap, ok := b.Snapshot("TSLA")
	require.True(t, ok)
	require.Len(t, snap.Buys, 1, "one-sided symbol is left alone")
}

func TestMatchIsIdempotentWithoutSubmissions(t *testing.T) {
	b := NewOrderBook(8, nil)
	mustSubmit(t, b, Buy, "AAPL", 10, "10")
	mustSubmit(t, b, Sell, "AAPL", 4, "9")
	mustSubmit(t, b, Sell, "AAPL", 4, "11")

	require.NotEmpty(t, b.Match())
	second := b.Match()
	require.NotNil(t, second)
	require.Empty(t, second)
}

func TestMatchOnEmptyBook(t *testing.T) {
	b := NewOrderBook(8, nil)
	require.Empty(t, b.Match())
}

func TestMatchKeepsSurvivorOrderAfterCompaction(t *testing.T) {
	b := NewOrderBook(8, nil)
	b1 := mustSubmit(t, b, Buy, "AAPL", 1, "10")
	mustSubmit(t, b, Buy, "AAPL", 1, "12")
	b3 := mustSubmit(t, b, Buy, "AAPL", 1, "10")
	mustSubmit(t, b, Buy, "AAPL", 1, "11")
	mustSubmit(t, b, Sell, "AAPL", 2, "11")

	matches := b.Match()
	require.Len(t, matches, 2)

	snap, _ := b.Snapshot("AAPL")
	require.Len(t, snap.Buys, 2)
	require.Equal(t, b1, snap.Buys[0].ID)
	require.Equal(t, b3, snap.Buys[1].ID)
	require.Empty(t, snap.Sells)
}
