package grpcserver

// Wire messages for crossbook.v1.Matching. They travel as JSON through Codec.

type SubmitRequest struct {
	Side     string `json:"side"`
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
}

type SubmitResponse struct {
	OrderID uint64 `json:"order_id"`
}

type MatchRequest struct{}

type Match struct {
	BuyOrderID  uint64 `json:"buy_order_id"`
	SellOrderID uint64 `json:"sell_order_id"`
	Symbol      string `json:"symbol"`
	Quantity    int64  `json:"quantity"`
	Price       string `json:"price"`
}

type MatchResponse struct {
	Matches []Match `json:"matches"`
	// OutboxError is set when the matches were applied but not queued for
	// delivery.
	OutboxError string `json:"outbox_error,omitempty"`
}

type ListSymbolsRequest struct{}

type SymbolEntry struct {
	Ticker string `json:"ticker"`
	Slot   int    `json:"slot"`
}

type ListSymbolsResponse struct {
	Symbols []SymbolEntry `json:"symbols"`
}

type GetBookRequest struct {
	Symbol     string `json:"symbol"`
	ByPriority bool   `json:"by_priority"`
}

type OrderEntry struct {
	ID       uint64 `json:"id"`
	Seq      uint64 `json:"seq"`
	Side     string `json:"side"`
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
}

type GetBookResponse struct {
	Symbol string       `json:"symbol"`
	Slot   int          `json:"slot"`
	Buys   []OrderEntry `json:"buys"`
	Sells  []OrderEntry `json:"sells"`
}
