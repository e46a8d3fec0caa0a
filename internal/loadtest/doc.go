// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package loadtest drives a bchan channel with a simulated text message
// pipeline.
//
// Producers generate batches of random messages and send them into one
// bounded channel. Workers receive batches and simulate a send per message
// with a normally distributed delay and a configurable failure rate. The
// last producer to finish releases its Sender, which closes the channel;
// workers drain what is left and exit on ErrClosed.
//
// A Monitor logs progress periodically through logrus, and Metrics exports
// channel state and pipeline counters to Prometheus.
//
// Configuration is TOML:
//
//	[messages]
//	message_count = 1000
//	message_length = 100
//
//	[producer]
//	producer_count = 1
//	batch_size = 1
//
//	[sender]
//	sender_count = 50000
//	send_time_mean = 1.0
//	send_time_stddev = 0.1
//	send_failure_rate = 0.0
//
//	[monitor]
//	print_frequency = 2
//	metrics_addr = ""
//
//	[queue]
//	max_queued_batches = 0
//	spin = 0
package loadtest
