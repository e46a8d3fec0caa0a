// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loadtest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"code.hybscloud.com/bchan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// StatsSource is anything reporting channel stats, such as a Sender or
// Receiver.
type StatsSource interface {
	Stats() bchan.Stats
}

var (
	queueLengthDesc = prometheus.NewDesc(
		"bchload_queue_length", "Batches buffered in the channel.", nil, nil)
	queueCapacityDesc = prometheus.NewDesc(
		"bchload_queue_capacity", "Channel capacity in batches.", nil, nil)
	waitingDesc = prometheus.NewDesc(
		"bchload_waiting", "Goroutines parked on the channel.", []string{"side"}, nil)
	handlesDesc = prometheus.NewDesc(
		"bchload_handles", "Live channel handles.", []string{"side"}, nil)
	closedDesc = prometheus.NewDesc(
		"bchload_queue_closed", "1 once the channel is closed.", nil, nil)
	messagesDesc = prometheus.NewDesc(
		"bchload_messages_total", "Messages per pipeline stage.", []string{"stage"}, nil)
	sendSecondsDesc = prometheus.NewDesc(
		"bchload_send_seconds_avg", "Mean simulated send time.", nil, nil)
)

// Metrics exports channel and harness state at scrape time.
type Metrics struct {
	queue     StatsSource
	collector *Collector
}

// NewMetrics returns a prometheus.Collector over queue and collector.
func NewMetrics(queue StatsSource, collector *Collector) *Metrics {
	return &Metrics{queue: queue, collector: collector}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- queueLengthDesc
	ch <- queueCapacityDesc
	ch <- waitingDesc
	ch <- handlesDesc
	ch <- closedDesc
	ch <- messagesDesc
	ch <- sendSecondsDesc
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	q := m.queue.Stats()
	s := m.collector.Snapshot()

	closed := 0.0
	if q.Closed {
		closed = 1
	}
	ch <- prometheus.MustNewConstMetric(queueLengthDesc, prometheus.GaugeValue, float64(q.Len))
	ch <- prometheus.MustNewConstMetric(queueCapacityDesc, prometheus.GaugeValue, float64(q.Cap))
	ch <- prometheus.MustNewConstMetric(waitingDesc, prometheus.GaugeValue, float64(q.WaitingSenders), "send")
	ch <- prometheus.MustNewConstMetric(waitingDesc, prometheus.GaugeValue, float64(q.WaitingReceivers), "recv")
	ch <- prometheus.MustNewConstMetric(handlesDesc, prometheus.GaugeValue, float64(q.Senders), "send")
	ch <- prometheus.MustNewConstMetric(handlesDesc, prometheus.GaugeValue, float64(q.Receivers), "recv")
	ch <- prometheus.MustNewConstMetric(closedDesc, prometheus.GaugeValue, closed)
	ch <- prometheus.MustNewConstMetric(messagesDesc, prometheus.CounterValue, float64(s.Produced), "produced")
	ch <- prometheus.MustNewConstMetric(messagesDesc, prometheus.CounterValue, float64(s.Dequeued), "dequeued")
	ch <- prometheus.MustNewConstMetric(messagesDesc, prometheus.CounterValue, float64(s.Sent), "sent")
	ch <- prometheus.MustNewConstMetric(messagesDesc, prometheus.CounterValue, float64(s.Failed), "failed")
	ch <- prometheus.MustNewConstMetric(sendSecondsDesc, prometheus.GaugeValue, s.AverageTime.Seconds())
}

// ServeMetrics serves reg on ln at /metrics until ctx is done.
func ServeMetrics(ctx context.Context, ln net.Listener, reg *prometheus.Registry, log logrus.FieldLogger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	log.WithField("addr", ln.Addr().String()).Info("serving metrics")
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("metrics server shutdown")
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
