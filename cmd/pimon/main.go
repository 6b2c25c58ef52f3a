package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/pimon/internal/config"
	"codeberg.org/mutker/pimon/internal/errors"
	"codeberg.org/mutker/pimon/internal/logger"
	"codeberg.org/mutker/pimon/internal/metrics"
	"codeberg.org/mutker/pimon/internal/power"
	"codeberg.org/mutker/pimon/internal/sensor"
	"codeberg.org/mutker/pimon/internal/server"
	"codeberg.org/mutker/pimon/internal/stats"
)

const shutdownTimeout = 5 * time.Second

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")

	metrics.Register()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	sensors := sensor.New(sensor.Config{
		VcgencmdPath: cfg.VcgencmdPath,
		HwmonPath:    cfg.HwmonPath,
		ThermalPath:  cfg.ThermalPath,
		CPUFreqPath:  cfg.CPUFreqPath,
	}, sensor.NewRunner(cfg.CommandTimeout()))

	collector := stats.NewCollector(sensors, cfg.CacheWindow(), cfg.SampleInterval())
	powerAggregator := power.NewAggregator(sensors, power.DefaultRails())

	srv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.New(collector, powerAggregator, cfg.CacheWindow()).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorWithCode(errors.Wrap(errors.ErrServerShutdown, err)).Send()
		}
	}()

	logger.Info().Str("address", cfg.ListenAddress).Msg("Listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorWithCode(errors.Wrap(errors.ErrServerStart, err)).Send()
		os.Exit(1)
	}

	logger.Info().Msg("Exiting...")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
