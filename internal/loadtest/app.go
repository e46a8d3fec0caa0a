// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"sync"
	"time"

	"code.hybscloud.com/bchan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Application wires producers, workers and the monitor around one bounded
// channel.
type Application struct {
	cfg       Config
	log       logrus.FieldLogger
	collector *Collector
	registry  *prometheus.Registry
}

// New returns an application for cfg.
func New(cfg Config, log logrus.FieldLogger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Application{
		cfg:       cfg,
		log:       log,
		collector: NewCollector(),
		registry:  prometheus.NewRegistry(),
	}, nil
}

// Registry returns the registry the channel metrics are exported on while
// Run is in progress.
func (a *Application) Registry() *prometheus.Registry {
	return a.registry
}

// Run produces every message and waits until the workers have drained the
// channel, or ctx is done. It returns the final counters.
// Counters accumulate across calls, so Run is meant to be called once.
func (a *Application) Run(ctx context.Context) (Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tx, rx := bchan.Build[Batch](bchan.New(a.cfg.QueueCapacity()).Spin(a.cfg.Queue.Spin))
	defer rx.Release()

	metrics := NewMetrics(rx, a.collector)
	if err := a.registry.Register(metrics); err != nil {
		tx.Release()
		return Stats{}, fmt.Errorf("loadtest: register metrics: %w", err)
	}
	defer a.registry.Unregister(metrics)

	var bg sync.WaitGroup
	bgCtx, stopBg := context.WithCancel(ctx)
	defer func() {
		stopBg()
		bg.Wait()
	}()
	if addr := a.cfg.Monitor.MetricsAddr; addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			tx.Release()
			return Stats{}, fmt.Errorf("loadtest: listen %s: %w", addr, err)
		}
		bg.Add(1)
		go func() {
			defer bg.Done()
			if err := ServeMetrics(bgCtx, ln, a.registry, a.log); err != nil {
				a.log.WithError(err).Error("metrics server")
			}
		}()
	}

	start := time.Now()
	monitor := NewMonitor(a.collector, a.cfg.PrintInterval(), a.log, start)
	bg.Add(1)
	go func() {
		defer bg.Done()
		monitor.Run(bgCtx)
	}()

	a.log.WithFields(logrus.Fields{
		"messages":  a.cfg.Messages.Count,
		"producers": a.cfg.Producer.Count,
		"batch":     a.cfg.Producer.BatchSize,
		"workers":   a.cfg.Sender.Count,
		"capacity":  tx.Cap(),
		"spin":      a.cfg.Queue.Spin,
	}).Info("starting")

	errs := make([]error, a.cfg.Producer.Count+a.cfg.Sender.Count)
	var wg sync.WaitGroup

	batches := a.cfg.BatchCount()
	for i := range a.cfg.Producer.Count {
		wg.Add(1)
		go func(out *bchan.Sender[Batch]) {
			defer wg.Done()
			defer out.Release()
			gen := NewGenerator(rand.Uint64(), a.cfg.Messages.Length)
			p := NewProducer(out, gen, a.collector, batches, a.cfg.Producer.BatchSize)
			errs[i] = p.Run(ctx)
		}(tx.Clone())
	}
	tx.Release()

	for i := range a.cfg.Sender.Count {
		wg.Add(1)
		go func(in *bchan.Receiver[Batch]) {
			defer wg.Done()
			defer in.Release()
			w := NewWorker(in, a.cfg.Sender, a.collector, rand.Uint64(), a.log)
			errs[a.cfg.Producer.Count+i] = w.Run(ctx)
		}(rx.Clone())
	}
	wg.Wait()
	stopBg()
	bg.Wait()

	final := monitor.Report(time.Now())
	a.log.WithFields(final.Fields()).Info("finished")

	if err := ctx.Err(); err != nil {
		return final.Stats, fmt.Errorf("loadtest: run interrupted: %w", err)
	}
	if err := errors.Join(errs...); err != nil {
		return final.Stats, err
	}
	return final.Stats, a.check(final.Stats, batches)
}

// check verifies every produced message went through a worker.
func (a *Application) check(s Stats, batches int) error {
	want := int64(batches) * int64(a.cfg.Producer.BatchSize) * int64(a.cfg.Producer.Count)
	switch {
	case s.Produced != want:
		return fmt.Errorf("loadtest: produced %d messages, want %d", s.Produced, want)
	case s.Dequeued != s.Produced:
		return fmt.Errorf("loadtest: dequeued %d messages, produced %d", s.Dequeued, s.Produced)
	case s.Finished() != s.Dequeued:
		return fmt.Errorf("loadtest: finished %d messages, dequeued %d", s.Finished(), s.Dequeued)
	}
	return nil
}
