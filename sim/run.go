package sim

import (
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crossbook/domain/orderbook"
)

// Engine is the part of service.OrderService the simulation drives.
type Engine interface {
	Submit(side orderbook.Side, ticker string, qty int64, price decimal.Decimal) (uint64, error)
	Match() ([]orderbook.MatchRecord, error)
}

// Config controls one simulation run.
type Config struct {
	Orders  int
	Seed    uint64
	Tickers int
}

// Stats summarises a run.
type Stats struct {
	Orders   int
	Batches  int
	Matches  int
	Quantity int64
	Notional decimal.Decimal
}

// Run submits cfg.Orders generated orders in batches of 1 to 4 and runs a
// matching pass after every batch.
func Run(eng Engine, cfg Config, log *zap.Logger) (Stats, error) {
	if cfg.Orders <= 0 {
		cfg.Orders = 1000
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	if cfg.Tickers <= 0 {
		cfg.Tickers = 100
	}
	if log == nil {
		log = zap.NewNop()
	}

	gen := NewGenerator(cfg.Seed, Tickers(cfg.Tickers))
	stats := Stats{Notional: decimal.Zero}

	log.Info("starting simulation", zap.Int("orders", cfg.Orders), zap.Uint64("seed", cfg.Seed))

	for stats.Orders < cfg.Orders {
		n := gen.BatchSize()
		for i := 0; i < n && stats.Orders < cfg.Orders; i++ {
			o := gen.Next()
			id, err := eng.Submit(o.Side, o.Ticker, o.Quantity, o.Price)
			if err != nil {
				return stats, errors.Wrapf(err, "sim: order %d", stats.Orders+1)
			}
			log.Info("order added",
				zap.Stringer("side", o.Side),
				zap.String("ticker", o.Ticker),
				zap.Int64("qty", o.Quantity),
				zap.String("price", o.Price.StringFixed(2)),
				zap.Uint64("order_id", id),
			)
			stats.Orders++
		}
		stats.Batches++

		matches, err := eng.Match()
		for _, m := range matches {
			log.Info("match",
				zap.String("ticker", m.Symbol),
				zap.Int64("qty", m.Quantity),
				zap.String("price", m.Price.StringFixed(2)),
				zap.Uint64("buy_id", m.BuyOrderID),
				zap.Uint64("sell_id", m.SellOrderID),
			)
			stats.Matches++
			stats.Quantity += m.Quantity
			stats.Notional = stats.Notional.Add(m.Notional())
		}
		if err != nil {
			return stats, errors.Wrapf(err, "sim: match after batch %d", stats.Batches)
		}
	}

	log.Info("simulation complete",
		zap.Int("orders", stats.Orders),
		zap.Int("batches", stats.Batches),
		zap.Int("matches", stats.Matches),
		zap.Int64("quantity", stats.Quantity),
	)
	return stats, nil
}
