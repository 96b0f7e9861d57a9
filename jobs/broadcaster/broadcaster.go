package broadcaster

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"crossbook/infra/codec"
	"crossbook/infra/kafka"
	"crossbook/infra/outbox"
)

// Store is the slice of the outbox the broadcaster drives.
type Store interface {
	Deliverable(limit int, maxRetries uint32) ([]outbox.Record, error)
	MarkSent(seq uint64) error
	MarkAcked(seq uint64) error
	MarkFailed(seq uint64) error
	DeleteAcked() (int, error)
}

type Config struct {
	Interval  time.Duration
	BatchSize int
	// MaxRetries caps delivery attempts per record. A record that fails its
	// last attempt is parked as FAILED and later records go out without it.
	// 0 retries forever and never reorders.
	MaxRetries uint32
}

// Broadcaster drains the outbox into Kafka, oldest record first.
// A failed publish stops the pass so per-symbol order is kept, unless the
// record has exhausted MaxRetries.
type Broadcaster struct {
	store Store
	pub   kafka.Publisher
	codec codec.Serializer
	cfg   Config
	log   *zap.Logger
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(store Store, pub kafka.Publisher, ser codec.Serializer, cfg Config, log *zap.Logger) *Broadcaster {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 512
	}
	if ser == nil {
		ser = codec.JSONSerializer{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{
		store: store,
		pub:   pub,
		codec: ser,
		cfg:   cfg,
		log:   log.Named("broadcaster"),
	}
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run flushes on every tick until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("started", zap.Duration("interval", b.cfg.Interval))

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("stopped")
			return

		case <-ticker.C:
			if _, err := b.Flush(ctx); err != nil && ctx.Err() == nil {
				b.log.Warn("flush failed", zap.Error(err))
			}
		}
	}
}

// ------------------------------------------------
// FLUSH
// ------------------------------------------------

// Flush publishes one batch of pending records and prunes acked ones.
// It returns the number of records acked in this pass.
func (b *Broadcaster) Flush(ctx context.Context) (int, error) {
	pending, err := b.store.Deliverable(b.cfg.BatchSize, b.cfg.MaxRetries)
	if err != nil {
		return 0, errors.Wrap(err, "broadcaster: load pending")
	}

	acked := 0
	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			return acked, err
		}

		if err := b.store.MarkSent(rec.Seq); err != nil {
			return acked, err
		}

		if err := b.pub.Publish(ctx, b.message(rec)); err != nil {
			if markErr := b.store.MarkFailed(rec.Seq); markErr != nil {
				b.log.Error("mark failed", zap.Uint64("seq", rec.Seq), zap.Error(markErr))
				return acked, errors.Wrapf(err, "broadcaster: publish seq %d", rec.Seq)
			}
			if attempts := rec.Retries + 1; b.cfg.MaxRetries > 0 && attempts >= b.cfg.MaxRetries {
				b.log.Error("record parked",
					zap.Uint64("seq", rec.Seq),
					zap.Uint32("attempts", attempts),
					zap.Error(err),
				)
				continue
			}
			return acked, errors.Wrapf(err, "broadcaster: publish seq %d", rec.Seq)
		}

		if err := b.store.MarkAcked(rec.Seq); err != nil {
			return acked, err
		}
		acked++
	}

	if acked > 0 {
		pruned, err := b.store.DeleteAcked()
		if err != nil {
			return acked, errors.Wrap(err, "broadcaster: prune acked")
		}
		b.log.Debug("flushed", zap.Int("acked", acked), zap.Int("pruned", pruned))
	}
	return acked, nil
}

// message keys the record by symbol so one symbol's trades share a partition.
func (b *Broadcaster) message(rec outbox.Record) kafka.Message {
	msg := kafka.Message{Value: rec.Payload}

	ev, err := b.codec.Decode(rec.Payload)
	if err != nil {
		b.log.Warn("undecodable payload, sending unkeyed",
			zap.Uint64("seq", rec.Seq), zap.Error(err))
		return msg
	}
	msg.Key = []byte(ev.Symbol)
	msg.EventID = ev.EventID
	return msg
}
