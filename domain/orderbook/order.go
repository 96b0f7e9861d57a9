package orderbook

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

type Side uint8

const (
	Buy Side = iota + 1
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// ParseSide accepts "buy"/"sell" in any case.
func ParseSide(v string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	default:
		return 0, errors.Wrapf(ErrInvalidSide, "side %q", v)
	}
}

// Order is a resting limit order.
// Quantity is the remaining quantity and is only decremented by the matcher.
type Order struct {
	ID       uint64
	Seq      uint64
	Side     Side
	Slot     int
	Quantity int64
	Price    decimal.Decimal
}

// MatchRecord is one execution between a resting buy and a resting sell.
// Price is always the sell order's limit price.
type MatchRecord struct {
	BuyOrderID  uint64
	SellOrderID uint64
	Symbol      string
	Quantity    int64
	Price       decimal.Decimal
}

// Notional returns Quantity * Price.
func (m MatchRecord) Notional() decimal.Decimal {
	return m.Price.Mul(decimal.NewFromInt(m.Quantity))
}
