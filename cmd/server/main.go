package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"crossbook/api/grpcserver"
	"crossbook/api/httpapi"
	"crossbook/config"
	"crossbook/domain/orderbook"
	"crossbook/infra/codec"
	"crossbook/infra/kafka"
	"crossbook/infra/logging"
	"crossbook/infra/metrics"
	"crossbook/infra/outbox"
	"crossbook/infra/sequence"
	"crossbook/jobs/broadcaster"
	"crossbook/service"
)

func main() {
	cfg := parseFlags()

	log, err := logging.New(cfg.LogLevel, cfg.DevLog)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func parseFlags() config.Config {
	def := config.Defaults()
	var cfg config.Config
	var brokers string
	var maxRetries uint

	flag.IntVar(&cfg.TickerCapacity, "tickers", def.TickerCapacity, "maximum number of ticker symbols")
	flag.StringVar(&cfg.GRPCAddr, "grpc", def.GRPCAddr, "gRPC listen address")
	flag.StringVar(&cfg.HTTPAddr, "http", def.HTTPAddr, "HTTP introspection listen address")
	flag.DurationVar(&cfg.MatchInterval, "match-interval", 0, "run a matching pass on this interval (0 disables)")
	flag.StringVar(&cfg.OutboxDir, "outbox", "", "pebble outbox directory (empty disables the trade tape)")
	flag.StringVar(&cfg.Serializer, "serializer", def.Serializer, "match event encoding: json or proto")
	flag.StringVar(&cfg.KafkaDriver, "kafka-driver", def.KafkaDriver, "sarama, kafka-go or none")
	flag.StringVar(&brokers, "kafka-brokers", "localhost:9092", "comma-separated Kafka brokers")
	flag.StringVar(&cfg.KafkaTopic, "kafka-topic", def.KafkaTopic, "Kafka topic for match events")
	flag.DurationVar(&cfg.BroadcastInterval, "broadcast-interval", def.BroadcastInterval, "outbox drain interval")
	flag.IntVar(&cfg.BroadcastBatch, "broadcast-batch", def.BroadcastBatch, "max records per drain")
	flag.UintVar(&maxRetries, "broadcast-max-retries", uint(def.BroadcastMaxRetries), "delivery attempts before a match event is parked")
	flag.StringVar(&cfg.LogLevel, "log-level", def.LogLevel, "debug, info, warn or error")
	flag.BoolVar(&cfg.DevLog, "dev", false, "human-readable console logging")
	flag.Parse()

	cfg.KafkaBrokers = config.SplitList(brokers)
	cfg.BroadcastMaxRetries = uint32(maxRetries)
	cfg.ApplyDefaults()
	return cfg
}

func run(cfg config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var jobs sync.WaitGroup

	// ---------------- Metrics ----------------

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// ---------------- Domain ----------------

	seq := sequence.New(0)
	book := orderbook.NewOrderBook(cfg.TickerCapacity, seq)

	ser, err := codec.ByName(cfg.Serializer)
	if err != nil {
		return err
	}

	// ---------------- Outbox ----------------

	var sink service.MatchSink
	if cfg.OutboxDir != "" {
		box, err := outbox.Open(cfg.OutboxDir)
		if err != nil {
			return errors.Wrap(err, "outbox init failed")
		}
		defer box.Close()
		sink = box

		log.Info("outbox opened", zap.String("dir", cfg.OutboxDir), zap.Uint64("last_seq", box.LastSeq()))

		// ---------------- Broadcaster ----------------

		pub, err := kafka.New(cfg.KafkaDriver, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return errors.Wrap(err, "kafka publisher init failed")
		}
		if pub != nil {
			defer pub.Close()

			bc := broadcaster.New(box, pub, ser, broadcaster.Config{
				Interval:   cfg.BroadcastInterval,
				BatchSize:  cfg.BroadcastBatch,
				MaxRetries: cfg.BroadcastMaxRetries,
			}, log)

			jobs.Add(1)
			go func() {
				defer jobs.Done()
				bc.Run(ctx)
			}()
			log.Info("broadcaster started",
				zap.String("driver", cfg.KafkaDriver),
				zap.Strings("brokers", cfg.KafkaBrokers),
				zap.String("topic", cfg.KafkaTopic),
			)
		}
	}

	// ---------------- Service ----------------

	svc := service.NewOrderService(book, sink, ser, m, log)

	if cfg.MatchInterval > 0 {
		done := svc.StartMatchJob(ctx, cfg.MatchInterval)
		jobs.Add(1)
		go func() {
			defer jobs.Done()
			<-done
		}()
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", cfg.GRPCAddr)
	}
	grpcSrv := grpcserver.NewGRPCServer(grpcserver.NewServer(svc, log))

	errc := make(chan error, 2)
	go func() {
		if err := grpcSrv.Serve(lis); err != nil {
			errc <- errors.Wrap(err, "gRPC server")
		}
	}()

	// ---------------- HTTP ----------------

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewServer(svc, reg, log).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- errors.Wrap(err, "HTTP server")
		}
	}()

	log.Info("crossbook running",
		zap.String("grpc", cfg.GRPCAddr),
		zap.String("http", cfg.HTTPAddr),
		zap.Int("ticker_capacity", book.Capacity()),
	)

	// ---------------- Shutdown ----------------

	select {
	case <-ctx.Done():
		err = nil
	case err = <-errc:
	}
	stop()

	log.Info("shutting down")
	grpcSrv.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil {
		log.Warn("http shutdown", zap.Error(serr))
	}

	jobs.Wait()
	return err
}
