// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loadtest

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the load harness configuration.
// Keys missing from a TOML document keep their Default values.
type Config struct {
	Messages MessagesConfig `toml:"messages"`
	Producer ProducerConfig `toml:"producer"`
	Sender   SenderConfig   `toml:"sender"`
	Monitor  MonitorConfig  `toml:"monitor"`
	Queue    QueueConfig    `toml:"queue"`
}

// MessagesConfig controls message generation.
type MessagesConfig struct {
	Count  int `toml:"message_count"`
	Length int `toml:"message_length"`
}

// ProducerConfig controls the producing side.
type ProducerConfig struct {
	Count     int `toml:"producer_count"`
	BatchSize int `toml:"batch_size"`
}

// SenderConfig controls the workers draining the channel.
// Times are in seconds.
type SenderConfig struct {
	Count       int     `toml:"sender_count"`
	TimeMean    float64 `toml:"send_time_mean"`
	TimeStddev  float64 `toml:"send_time_stddev"`
	FailureRate float64 `toml:"send_failure_rate"`
}

// MonitorConfig controls progress reporting.
type MonitorConfig struct {
	PrintFrequency float64 `toml:"print_frequency"`
	MetricsAddr    string  `toml:"metrics_addr"`
}

// QueueConfig sizes the channel between producers and workers.
// MaxQueuedBatches <= 0 means one slot per worker. Spin is the number of
// optimistic retries a Send or Recv makes before parking.
type QueueConfig struct {
	MaxQueuedBatches int `toml:"max_queued_batches"`
	Spin             int `toml:"spin"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Messages: MessagesConfig{Count: 1000, Length: 100},
		Producer: ProducerConfig{Count: 1, BatchSize: 1},
		Sender: SenderConfig{
			Count:       50000,
			TimeMean:    1.0,
			TimeStddev:  0.1,
			FailureRate: 0.0,
		},
		Monitor: MonitorConfig{PrintFrequency: 2},
	}
}

// Parse decodes a TOML document over the defaults.
// Unknown keys are rejected.
func Parse(doc string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(doc, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("loadtest: parse config: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Load reads a TOML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("loadtest: load config %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("loadtest: unknown config keys: %s", strings.Join(names, ", "))
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Messages.Count < 0 {
		errs = append(errs, errors.New("message_count must be >= 0"))
	}
	if c.Messages.Length < 0 {
		errs = append(errs, errors.New("message_length must be >= 0"))
	}
	if c.Producer.Count < 1 {
		errs = append(errs, errors.New("producer_count must be >= 1"))
	}
	if c.Producer.BatchSize < 1 {
		errs = append(errs, errors.New("batch_size must be >= 1"))
	}
	if c.Sender.Count < 1 {
		errs = append(errs, errors.New("sender_count must be >= 1"))
	}
	if c.Sender.TimeMean < 0 {
		errs = append(errs, errors.New("send_time_mean must be >= 0"))
	}
	if c.Sender.TimeStddev < 0 {
		errs = append(errs, errors.New("send_time_stddev must be >= 0"))
	}
	if c.Sender.FailureRate < 0 || c.Sender.FailureRate > 1 {
		errs = append(errs, errors.New("send_failure_rate must be in [0, 1]"))
	}
	if c.Queue.Spin < 0 {
		errs = append(errs, errors.New("spin must be >= 0"))
	}
	if c.Monitor.PrintFrequency <= 0 {
		errs = append(errs, errors.New("print_frequency must be > 0"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("loadtest: invalid config: %w", errors.Join(errs...))
}

// BatchCount is the number of batches each producer sends.
func (c Config) BatchCount() int {
	n := float64(c.Messages.Count) / float64(c.Producer.BatchSize) / float64(c.Producer.Count)
	return int(math.Ceil(n))
}

// QueueCapacity is the channel capacity in batches.
func (c Config) QueueCapacity() int {
	if c.Queue.MaxQueuedBatches > 0 {
		return c.Queue.MaxQueuedBatches
	}
	return c.Sender.Count
}

// PrintInterval is the monitor period.
func (c Config) PrintInterval() time.Duration {
	return seconds(c.Monitor.PrintFrequency)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
