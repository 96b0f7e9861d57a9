// Package sim drives an order book with a deterministic synthetic order flow.
package sim

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"crossbook/domain/orderbook"
)

// DefaultSeed reproduces the reference order flow.
const DefaultSeed = 12345

const (
	lcgMul  = 1103515245
	lcgInc  = 12345
	lcgMask = 0x7fffffff

	maxBatch    = 4
	maxQuantity = 1000
	minPrice    = 10.0
	priceSpan   = 990.0
)

// Tickers returns STOCK1..STOCKn.
func Tickers(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("STOCK%d", i+1)
	}
	return out
}

// OrderSpec is one generated submission.
type OrderSpec struct {
	Side     orderbook.Side
	Ticker   string
	Quantity int64
	Price    decimal.Decimal
}

// Generator is a linear congruential source of orders. Not safe for
// concurrent use.
type Generator struct {
	seed    uint64
	tickers []string
}

func NewGenerator(seed uint64, tickers []string) *Generator {
	return &Generator{seed: seed & lcgMask, tickers: tickers}
}

// Float advances the generator and returns a value in [0, 1].
func (g *Generator) Float() float64 {
	g.seed = (lcgMul*g.seed + lcgInc) & lcgMask
	return float64(g.seed) / lcgMask
}

// Seed returns the current generator state.
func (g *Generator) Seed() uint64 { return g.seed }

// BatchSize returns how many orders to submit before the next match pass,
// between 1 and 4.
func (g *Generator) BatchSize() int {
	return 1 + min(int(g.Float()*maxBatch), maxBatch-1)
}

// Next generates one order. Prices are in [10.00, 1000.00] with cent
// precision, quantities in [1, 1000].
func (g *Generator) Next() OrderSpec {
	side := orderbook.Sell
	if g.Float() < 0.5 {
		side = orderbook.Buy
	}
	ticker := g.tickers[min(int(g.Float()*float64(len(g.tickers))), len(g.tickers)-1)]
	qty := 1 + min(int64(g.Float()*maxQuantity), maxQuantity-1)
	cents := int64(math.RoundToEven((minPrice + g.Float()*priceSpan) * 100))

	return OrderSpec{
		Side:     side,
		Ticker:   ticker,
		Quantity: qty,
		Price:    decimal.New(cents, -2),
	}
}
