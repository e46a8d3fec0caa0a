// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command bchload runs the simulated message pipeline over a bchan channel.
//
//	bchload -config config.toml -log-level debug
//
// A missing config file falls back to the built-in defaults.
// SIGINT and SIGTERM stop the run early.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"code.hybscloud.com/bchan/internal/loadtest"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	logLevel := flag.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if err := run(*configPath, *logLevel, log); err != nil {
		log.WithError(err).Fatal("bchload")
	}
}

func run(configPath, logLevel string, log *logrus.Logger) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	cfg, err := loadtest.Load(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("path", configPath).Warn("config file not found, using defaults")
		cfg, err = loadtest.Default(), nil
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := loadtest.New(cfg, log)
	if err != nil {
		return err
	}
	stats, err := app.Run(ctx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"sent":    stats.Sent,
		"failed":  stats.Failed,
		"latency": stats.AverageTime,
	}).Info("done")
	return nil
}
