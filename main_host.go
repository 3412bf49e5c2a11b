//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"kestrel/app"
	"kestrel/hal"
)

func main() {
	var cfg hal.HeadlessConfig
	var appCfg app.Config
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.DurationVar(&cfg.Quantum, "quantum", hal.DefaultQuantum, "Timer interrupt period.")
	flag.StringVar(&appCfg.ScenarioPath, "scenario", "", "YAML scenario file (default: built-in).")
	flag.StringVar(&appCfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error).")
	flag.StringVar(&appCfg.LogFormat, "log-format", "text", "Log format (text, json).")
	flag.Parse()

	newApp := func(h hal.HAL) (func() error, error) {
		return app.New(h, appCfg)
	}

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, cfg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(newApp, cfg.Quantum); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
