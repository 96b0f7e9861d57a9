package orderbook

import "github.com/cockroachdb/errors"

// Rejections returned by Submit. A rejected submission never mutates the book.
var (
	ErrInvalidQuantity        = errors.New("orderbook: quantity must be positive")
	ErrInvalidPrice           = errors.New("orderbook: price must be positive")
	ErrInvalidSide            = errors.New("orderbook: side must be BUY or SELL")
	ErrEmptyTicker            = errors.New("orderbook: ticker must not be empty")
	ErrTickerCapacityExceeded = errors.New("orderbook: ticker capacity exceeded")
)
