// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loadtest

import (
	"time"

	"code.hybscloud.com/atomix"
)

// Collector accumulates harness counters. Safe for concurrent use.
type Collector struct {
	produced atomix.Int64
	dequeued atomix.Int64
	sent     atomix.Int64
	failed   atomix.Int64
	sendTime atomix.Int64 // Nanoseconds spent in sends, successful or not
}

// NewCollector returns a zeroed collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Produced records n messages handed to the channel.
func (c *Collector) Produced(n int) { c.produced.Add(int64(n)) }

// Dequeued records n messages taken from the channel.
func (c *Collector) Dequeued(n int) { c.dequeued.Add(int64(n)) }

// Sent records a successful send that took d.
func (c *Collector) Sent(d time.Duration) {
	c.sendTime.Add(int64(d))
	c.sent.Add(1)
}

// Failed records a failed send that took d.
func (c *Collector) Failed(d time.Duration) {
	c.sendTime.Add(int64(d))
	c.failed.Add(1)
}

// Snapshot returns the current counters.
// Counters are read individually and may be skewed under load.
func (c *Collector) Snapshot() Stats {
	s := Stats{
		Produced: c.produced.Load(),
		Dequeued: c.dequeued.Load(),
		Sent:     c.sent.Load(),
		Failed:   c.failed.Load(),
	}
	if n := s.Finished(); n > 0 {
		s.AverageTime = time.Duration(c.sendTime.Load() / n)
	}
	return s
}

// Stats is a snapshot of harness counters, in messages.
type Stats struct {
	Produced    int64
	Dequeued    int64
	Sent        int64
	Failed      int64
	AverageTime time.Duration // Mean send time over finished messages
}

// Finished returns messages whose send completed either way.
func (s Stats) Finished() int64 { return s.Sent + s.Failed }

// Enqueued returns messages produced but not yet taken by a worker.
func (s Stats) Enqueued() int64 { return s.Produced - s.Dequeued }

// Processing returns messages taken by a worker and still being sent.
func (s Stats) Processing() int64 { return s.Dequeued - s.Finished() }

// FailureRate returns the failed fraction of finished messages.
func (s Stats) FailureRate() float64 {
	if n := s.Finished(); n > 0 {
		return float64(s.Failed) / float64(n)
	}
	return 0
}
