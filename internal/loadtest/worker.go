// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loadtest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"code.hybscloud.com/bchan"
	"github.com/sirupsen/logrus"
)

// Result is the outcome of one simulated send.
type Result uint8

const (
	// Success means the message was delivered.
	Success Result = iota
	// Failure means the simulated delivery failed.
	Failure
)

func (r Result) String() string {
	if r == Success {
		return "success"
	}
	return "failure"
}

// Worker drains batches from the channel and simulates sending each
// message.
type Worker struct {
	in        bchan.Consumer[Batch]
	cfg       SenderConfig
	collector *Collector
	rng       *rand.Rand
	log       logrus.FieldLogger
}

// NewWorker returns a worker reading from in.
func NewWorker(in bchan.Consumer[Batch], cfg SenderConfig, collector *Collector, seed uint64, log logrus.FieldLogger) *Worker {
	return &Worker{
		in:        in,
		cfg:       cfg,
		collector: collector,
		rng:       rand.New(rand.NewPCG(seed, ^seed)),
		log:       log,
	}
}

// Run receives until the channel is closed and drained.
// Returns nil on ErrClosed, ctx.Err() when cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		batch, err := w.in.Recv(ctx)
		if bchan.IsClosed(err) {
			return nil
		}
		if err != nil {
			return err
		}
		w.collector.Dequeued(batch.Len())
		for i := range batch.Messages {
			if _, err := w.Send(ctx, &batch.Messages[i]); err != nil {
				return err
			}
		}
	}
}

// Send simulates delivering msg. The send sleeps first, so a failed send
// also takes time.
func (w *Worker) Send(ctx context.Context, msg *Message) (Result, error) {
	d := w.sendTime()
	if err := sleep(ctx, d); err != nil {
		return Failure, fmt.Errorf("loadtest: send %s: %w", msg.ID, err)
	}
	if w.rng.Float64() < w.cfg.FailureRate {
		w.collector.Failed(d)
		w.log.WithField("id", msg.ID).Debug("send failed")
		return Failure, nil
	}
	w.collector.Sent(d)
	return Success, nil
}

// sendTime draws a normally distributed duration clamped at zero.
func (w *Worker) sendTime() time.Duration {
	s := w.rng.NormFloat64()*w.cfg.TimeStddev + w.cfg.TimeMean
	return seconds(max(s, 0))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
