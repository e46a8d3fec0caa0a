// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loadtest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"code.hybscloud.com/bchan/internal/loadtest"
	"github.com/sirupsen/logrus/hooks/test"
)

func fastConfig() loadtest.Config {
	cfg := loadtest.Default()
	cfg.Messages.Count = 200
	cfg.Messages.Length = 16
	cfg.Producer.Count = 3
	cfg.Producer.BatchSize = 4
	cfg.Sender.Count = 8
	cfg.Sender.TimeMean = 0
	cfg.Sender.TimeStddev = 0
	cfg.Sender.FailureRate = 0.5
	cfg.Monitor.PrintFrequency = 0.005
	cfg.Queue.MaxQueuedBatches = 2
	return cfg
}

func TestApplicationRun(t *testing.T) {
	log, hook := test.NewNullLogger()
	app, err := loadtest.New(fastConfig(), log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// ceil(200 / 4 / 3) = 17 batches per producer
	const want = 17 * 4 * 3
	if s.Produced != want || s.Dequeued != want || s.Finished() != want {
		t.Fatalf("Stats: got %+v, want %d through every stage", s, want)
	}
	if s.Sent == 0 || s.Failed == 0 {
		t.Fatalf("failure rate 0.5 produced sent=%d failed=%d", s.Sent, s.Failed)
	}
	if e := hook.LastEntry(); e == nil || e.Message != "finished" {
		t.Fatalf("last log entry: got %v, want finished", e)
	}

	// Metrics are unregistered once Run returns
	mfs, err := app.Registry().Gather()
	if err != nil || len(mfs) != 0 {
		t.Fatalf("Gather after Run: got %d families, %v", len(mfs), err)
	}
}

func TestApplicationMetricsEndpoint(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := fastConfig()
	cfg.Producer.Count = 1
	cfg.Producer.BatchSize = 1
	cfg.Messages.Count = 50
	cfg.Sender.Count = 1
	cfg.Sender.FailureRate = 0
	cfg.Monitor.MetricsAddr = "127.0.0.1:0"
	app, err := loadtest.New(cfg, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Sent != 50 || s.Failed != 0 {
		t.Fatalf("Stats: got %+v, want 50 sent", s)
	}
}

func TestApplicationSpin(t *testing.T) {
	log, hook := test.NewNullLogger()
	cfg := fastConfig()
	cfg.Queue.Spin = 32
	app, err := loadtest.New(cfg, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Finished() != 17*4*3 {
		t.Fatalf("Finished: got %d, want %d", s.Finished(), 17*4*3)
	}
	for _, e := range hook.AllEntries() {
		if e.Message == "starting" && e.Data["spin"] != 32 {
			t.Fatalf("starting entry spin field: got %v, want 32", e.Data["spin"])
		}
	}
}

func TestApplicationCancel(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := fastConfig()
	cfg.Sender.TimeMean = 60
	app, err := loadtest.New(cfg, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		s   loadtest.Stats
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := app.Run(ctx)
		done <- result{s, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case r := <-done:
		if !errors.Is(r.err, context.Canceled) {
			t.Fatalf("Run: got %v, want context.Canceled", r.err)
		}
		if r.s.Sent != 0 {
			t.Fatalf("Sent: got %d, want 0 with 60s sends", r.s.Sent)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := loadtest.Default()
	cfg.Sender.Count = 0
	if _, err := loadtest.New(cfg, log); err == nil {
		t.Fatal("New: want error for sender_count = 0")
	}
}
