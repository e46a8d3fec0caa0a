// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loadtest_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"code.hybscloud.com/bchan/internal/loadtest"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDefaultConfig(t *testing.T) {
	cfg := loadtest.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
	if cfg.Messages.Count != 1000 || cfg.Messages.Length != 100 {
		t.Fatalf("messages: got %+v", cfg.Messages)
	}
	if cfg.Sender.Count != 50000 || cfg.Sender.TimeMean != 1.0 || cfg.Sender.TimeStddev != 0.1 {
		t.Fatalf("sender: got %+v", cfg.Sender)
	}
	if got := cfg.QueueCapacity(); got != 50000 {
		t.Fatalf("QueueCapacity: got %d, want sender_count", got)
	}
	if got := cfg.PrintInterval(); got != 2*time.Second {
		t.Fatalf("PrintInterval: got %v, want 2s", got)
	}
}

func TestParsePartial(t *testing.T) {
	cfg, err := loadtest.Parse(`
[messages]
message_count = 250

[sender]
sender_count = 8
send_failure_rate = 0.25

[queue]
max_queued_batches = 3
spin = 16
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Messages.Count != 250 || cfg.Messages.Length != 100 {
		t.Fatalf("messages: got %+v, want count=250 length=100", cfg.Messages)
	}
	if cfg.Sender.Count != 8 || cfg.Sender.FailureRate != 0.25 || cfg.Sender.TimeMean != 1.0 {
		t.Fatalf("sender: got %+v", cfg.Sender)
	}
	if cfg.Producer.Count != 1 || cfg.Producer.BatchSize != 1 {
		t.Fatalf("producer defaults lost: %+v", cfg.Producer)
	}
	if got := cfg.QueueCapacity(); got != 3 {
		t.Fatalf("QueueCapacity: got %d, want 3", got)
	}
	if cfg.Queue.Spin != 16 {
		t.Fatalf("Spin: got %d, want 16", cfg.Queue.Spin)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := loadtest.Parse("[sender]\nsender_cnt = 3\n")
	if err == nil || !strings.Contains(err.Error(), "sender.sender_cnt") {
		t.Fatalf("Parse: got %v, want unknown key error", err)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"producers": "[producer]\nproducer_count = 0\n",
		"batch":     "[producer]\nbatch_size = -1\n",
		"workers":   "[sender]\nsender_count = 0\n",
		"rate":      "[sender]\nsend_failure_rate = 1.5\n",
		"stddev":    "[sender]\nsend_time_stddev = -0.1\n",
		"frequency": "[monitor]\nprint_frequency = 0\n",
		"spin":      "[queue]\nspin = -1\n",
		"syntax":    "[sender\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := loadtest.Parse(doc); err == nil {
				t.Fatalf("Parse(%q): want error", doc)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := "[producer]\nproducer_count = 3\nbatch_size = 7\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadtest.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Producer.Count != 3 || cfg.Producer.BatchSize != 7 {
		t.Fatalf("producer: got %+v", cfg.Producer)
	}

	if _, err := loadtest.Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Load missing file: got %v, want not-exist", err)
	}
}

func TestBatchCount(t *testing.T) {
	cases := []struct {
		messages, batch, producers, want int
	}{
		{1000, 1, 1, 1000},
		{1000, 3, 1, 334},
		{1000, 10, 3, 34},
		{0, 5, 2, 0},
		{1, 100, 4, 1},
	}
	for _, tc := range cases {
		cfg := loadtest.Default()
		cfg.Messages.Count = tc.messages
		cfg.Producer.BatchSize = tc.batch
		cfg.Producer.Count = tc.producers
		if got := cfg.BatchCount(); got != tc.want {
			t.Fatalf("BatchCount(%d/%d/%d): got %d, want %d", tc.messages, tc.batch, tc.producers, got, tc.want)
		}
	}
}
