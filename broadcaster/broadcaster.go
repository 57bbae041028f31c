// Package broadcaster drains the outbox in the background, pushing every
// PENDING report through a sink until it is ACKED or out of retries.
package broadcaster

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"pandump/outbox"
	"pandump/sink"
)

type Config struct {
	Interval   time.Duration // scan period, defaults to 250ms
	MaxRetries uint32        // publish attempts before FAILED, defaults to 5
	Logger     log.Logger
}

type Broadcaster struct {
	box      *outbox.Outbox
	sink     sink.Sink
	interval time.Duration
	maxRetry uint32
	logger   log.Logger
}

func New(box *outbox.Outbox, snk sink.Sink, cfg Config) *Broadcaster {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Broadcaster{
		box:      box,
		sink:     snk,
		interval: cfg.Interval,
		maxRetry: cfg.MaxRetries,
		logger:   log.With(logger, "component", "broadcaster"),
	}
}

// Start launches the drain loop and returns. The loop stops when ctx is
// cancelled; the caller keeps ownership of the outbox and the sink.
func (b *Broadcaster) Start(ctx context.Context) {
	level.Info(b.logger).Log("msg", "started", "interval", b.interval)

	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		b.requeueStale()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.replayOnce(ctx)
			}
		}
	}()
}

// requeueStale returns SENT entries to PENDING. They belong to a previous
// run that died between publish and ack; receivers deduplicate, so sending
// again is the safe direction.
func (b *Broadcaster) requeueStale() {
	_ = b.box.ScanByState(outbox.StateSent, func(rep *outbox.Report) error {
		level.Warn(b.logger).Log("msg", "requeueing unacked report", "seq", rep.Seq)
		return b.box.UpdateState(rep.Seq, outbox.StatePending, rep.Retries)
	})
}

func (b *Broadcaster) replayOnce(ctx context.Context) {
	err := b.box.ScanByState(outbox.StatePending, func(rep *outbox.Report) error {
		attempt := rep.Retries + 1
		if err := b.box.UpdateState(rep.Seq, outbox.StateSent, attempt); err != nil {
			return err
		}

		if err := b.sink.Publish(ctx, rep); err != nil {
			level.Warn(b.logger).Log("msg", "publish failed",
				"seq", rep.Seq, "attempt", attempt, "err", err)
			if attempt >= b.maxRetry {
				return b.box.UpdateState(rep.Seq, outbox.StateFailed, attempt)
			}
			return b.box.UpdateState(rep.Seq, outbox.StatePending, attempt)
		}

		return b.box.UpdateState(rep.Seq, outbox.StateAcked, attempt)
	})
	if err != nil {
		level.Error(b.logger).Log("msg", "drain pass failed", "err", err)
	}
}
