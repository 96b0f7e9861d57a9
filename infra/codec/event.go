package codec

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crossbook/domain/orderbook"
)

// MatchEvent is the trade-tape form of a MatchRecord.
type MatchEvent struct {
	EventID     string          `json:"event_id"`
	Symbol      string          `json:"symbol"`
	BuyOrderID  uint64          `json:"buy_order_id"`
	SellOrderID uint64          `json:"sell_order_id"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

// FromMatch stamps a match record with a fresh event id.
func FromMatch(m orderbook.MatchRecord, at time.Time) MatchEvent {
	return MatchEvent{
		EventID:     uuid.NewString(),
		Symbol:      m.Symbol,
		BuyOrderID:  m.BuyOrderID,
		SellOrderID: m.SellOrderID,
		Quantity:    m.Quantity,
		Price:       m.Price,
		ExecutedAt:  at.UTC(),
	}
}

// Record converts the event back to the core's match record.
func (e MatchEvent) Record() orderbook.MatchRecord {
	return orderbook.MatchRecord{
		BuyOrderID:  e.BuyOrderID,
		SellOrderID: e.SellOrderID,
		Symbol:      e.Symbol,
		Quantity:    e.Quantity,
		Price:       e.Price,
	}
}
