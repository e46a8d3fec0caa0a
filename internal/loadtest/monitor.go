// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loadtest

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Report is one progress sample.
type Report struct {
	Stats
	FailurePct       float64
	Throughput       float64 // Finished messages per second since start
	RecentThroughput float64 // Finished messages per second since the last report
	Elapsed          time.Duration
}

// Fields renders the report as structured log fields.
func (r Report) Fields() logrus.Fields {
	return logrus.Fields{
		"produced":    r.Produced,
		"enqueued":    r.Enqueued(),
		"processing":  r.Processing(),
		"finished":    r.Finished(),
		"sent":        r.Sent,
		"failed":      r.Failed,
		"failure_pct": r.FailurePct,
		"tput":        r.Throughput,
		"recent_tput": r.RecentThroughput,
		"latency":     r.AverageTime,
		"elapsed":     r.Elapsed.Round(100 * time.Millisecond),
	}
}

// Monitor logs a Report every interval.
type Monitor struct {
	collector    *Collector
	interval     time.Duration
	log          logrus.FieldLogger
	start        time.Time
	lastTime     time.Time
	lastFinished int64
}

// NewMonitor returns a monitor whose elapsed time starts at start.
func NewMonitor(collector *Collector, interval time.Duration, log logrus.FieldLogger, start time.Time) *Monitor {
	return &Monitor{
		collector: collector,
		interval:  interval,
		log:       log,
		start:     start,
		lastTime:  start,
	}
}

// Report samples the collector at now and advances the recent window.
// Not safe for concurrent use.
func (m *Monitor) Report(now time.Time) Report {
	s := m.collector.Snapshot()
	finished := s.Finished()
	r := Report{
		Stats:      s,
		FailurePct: s.FailureRate() * 100,
		Elapsed:    now.Sub(m.start),
	}
	if sec := r.Elapsed.Seconds(); sec > 0 {
		r.Throughput = float64(finished) / sec
	}
	if sec := now.Sub(m.lastTime).Seconds(); sec > 0 {
		r.RecentThroughput = float64(finished-m.lastFinished) / sec
	}
	m.lastTime = now
	m.lastFinished = finished
	return r
}

// Run logs reports until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			m.log.WithFields(m.Report(now).Fields()).Info("progress")
		}
	}
}
