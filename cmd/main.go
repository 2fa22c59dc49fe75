// Copyright 2018 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// shutdownGrace bounds how long charts in flight may keep running after
// the first signal.
const shutdownGrace = 10 * time.Second

var globalContext context.Context

// watchSignals cancels the run on the first signal. Charts already being
// drawn finish unless a second signal arrives or the grace period runs out.
// The returned func stops watching.
func watchSignals(cancel context.CancelFunc) func() {
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	done := make(chan struct{})

	go func() {
		var sig os.Signal
		select {
		case sig = <-sc:
		case <-done:
			return
		}
		log.WithField("signal", sig).Warn("stopping, charts not yet started are skipped")
		cancel()

		timer := time.NewTimer(shutdownGrace)
		defer timer.Stop()
		select {
		case sig = <-sc:
			log.WithField("signal", sig).Error("second signal, exiting now")
			os.Exit(1)
		case <-timer.C:
			log.WithField("grace", shutdownGrace).Error("charts still running, exiting now")
			os.Exit(1)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sc)
		close(done)
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	globalContext = ctx
	stop := watchSignals(cancel)

	rootCmd := newRootCommand()
	rootCmd.AddCommand(
		newListCommand(),
		newStatsCommand(),
	)
	cobra.EnablePrefixMatching = true

	err := rootCmd.Execute()
	stop()
	cancel()

	if err != nil {
		log.WithError(err).Error("genplots failed")
		os.Exit(1)
	}
}
