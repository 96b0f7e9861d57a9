package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"crossbook/domain/orderbook"
	"crossbook/infra/logging"
	"crossbook/service"
	"crossbook/sim"
)

func main() {
	orders := flag.Int("iterations", 1000, "number of orders to submit")
	seed := flag.Uint64("seed", sim.DefaultSeed, "generator seed")
	tickers := flag.Int("tickers", 100, "number of STOCKn symbols")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	log, err := logging.New(*level, true)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	svc := service.NewOrderService(orderbook.NewOrderBook(0, nil), nil, nil, nil, log)

	stats, err := sim.Run(svc, sim.Config{Orders: *orders, Seed: *seed, Tickers: *tickers}, log)
	if err != nil {
		log.Fatal("simulation failed", zap.Error(err))
	}

	log.Info("book after simulation",
		zap.Int("resting", svc.Resting()),
		zap.Int("symbols", len(svc.Symbols())),
		zap.String("notional", stats.Notional.StringFixed(2)),
	)
}
