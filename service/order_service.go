package service

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crossbook/domain/orderbook"
	"crossbook/infra/codec"
	"crossbook/infra/metrics"
)

// MatchSink receives encoded match events after every pass.
type MatchSink interface {
	Append(payloads ...[]byte) ([]uint64, error)
}

// ErrSink marks a pass whose matches were applied to the book but could not
// be handed to the sink.
var ErrSink = errors.New("service: match sink append failed")

/*
OrderService is the ONLY write entry point into the system.

All coordination between:
- domain (orderbook)
- infra (codec, outbox sink, metrics)
happens here, under one lock.
*/
type OrderService struct {
	mu      sync.Mutex
	book    *orderbook.OrderBook
	sink    MatchSink
	codec   codec.Serializer
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

// NewOrderService wires all dependencies. sink, ser, m and log may be nil.
func NewOrderService(
	book *orderbook.OrderBook,
	sink MatchSink,
	ser codec.Serializer,
	m *metrics.Metrics,
	log *zap.Logger,
) *OrderService {
	if ser == nil {
		ser = codec.JSONSerializer{}
	}
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		book:    book,
		sink:    sink,
		codec:   ser,
		metrics: m,
		log:     log.Named("orders"),
		now:     time.Now,
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Submit rests a new limit order and returns its order id.
func (s *OrderService) Submit(
	side orderbook.Side,
	ticker string,
	qty int64,
	price decimal.Decimal,
) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.book.Submit(side, ticker, qty, price)
	if err != nil {
		s.metrics.Rejected.WithLabelValues(rejectReason(err)).Inc()
		s.log.Debug("order rejected",
			zap.String("ticker", ticker),
			zap.Stringer("side", side),
			zap.Int64("qty", qty),
			zap.Stringer("price", price),
			zap.Error(err),
		)
		return 0, err
	}

	s.metrics.Submitted.WithLabelValues(side.String()).Inc()
	s.metrics.Resting.Set(float64(s.book.Resting()))
	s.metrics.Symbols.Set(float64(len(s.book.Symbols())))
	return id, nil
}

// Match runs one full matching pass. When a sink is configured the pass's
// events are appended before the lock is released, so sink order equals
// match order. A sink failure is reported wrapped in ErrSink alongside the
// records; the book has already been updated.
func (s *OrderService) Match() ([]orderbook.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	records := s.book.Match()
	s.metrics.PassTime.Observe(time.Since(start).Seconds())

	if len(records) == 0 {
		return records, nil
	}

	var qty int64
	for _, r := range records {
		qty += r.Quantity
	}
	s.metrics.Matches.Add(float64(len(records)))
	s.metrics.MatchedQty.Add(float64(qty))
	s.metrics.Resting.Set(float64(s.book.Resting()))

	s.log.Info("matching pass",
		zap.Int("matches", len(records)),
		zap.Int64("quantity", qty),
		zap.Int("resting", s.book.Resting()),
	)

	if err := s.publish(records, start); err != nil {
		s.metrics.OutboxErrs.Inc()
		s.log.Error("match sink append failed", zap.Int("matches", len(records)), zap.Error(err))
		return records, errors.Mark(errors.Wrap(err, "service: append matches"), ErrSink)
	}
	return records, nil
}

func (s *OrderService) publish(records []orderbook.MatchRecord, at time.Time) error {
	if s.sink == nil {
		return nil
	}
	payloads := make([][]byte, len(records))
	for i, r := range records {
		b, err := s.codec.Encode(codec.FromMatch(r, at))
		if err != nil {
			return err
		}
		payloads[i] = b
	}
	_, err := s.sink.Append(payloads...)
	return err
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// Symbols lists registered symbols in registration order.
func (s *OrderService) Symbols() []orderbook.Symbol {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Symbols()
}

// Snapshot returns a copy of one symbol's resting orders.
func (s *OrderService) Snapshot(ticker string) (orderbook.BookSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Snapshot(ticker)
}

// Snapshots returns copies of every symbol's resting orders.
func (s *OrderService) Snapshots() []orderbook.BookSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Snapshots()
}

// Resting returns the number of resting orders.
func (s *OrderService) Resting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Resting()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, orderbook.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, orderbook.ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, orderbook.ErrInvalidSide):
		return "invalid_side"
	case errors.Is(err, orderbook.ErrEmptyTicker):
		return "empty_ticker"
	case errors.Is(err, orderbook.ErrTickerCapacityExceeded):
		return "ticker_capacity"
	default:
		return "other"
	}
}
