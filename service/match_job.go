package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartMatchJob runs a matching pass every interval until ctx is done.
// The returned channel is closed once the job has stopped. A non-positive
// interval starts nothing and returns an already closed channel.
func (s *OrderService) StartMatchJob(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		s.log.Warn("match job not started", zap.Duration("interval", interval))
		close(done)
		return done
	}

	go func() {
		defer close(done)

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if _, err := s.Match(); err != nil {
					s.log.Warn("scheduled match pass", zap.Error(err))
				}
			}
		}
	}()

	return done
}
