package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/rtef/pkg/broker"
	"github.com/cuemby/rtef/pkg/config"
	"github.com/cuemby/rtef/pkg/log"
	"github.com/cuemby/rtef/pkg/metrics"
	"github.com/cuemby/rtef/pkg/plugins/dbworker"
	"github.com/cuemby/rtef/pkg/registry"
	"github.com/cuemby/rtef/pkg/timer"
	"github.com/cuemby/rtef/pkg/watchdog"
)

const serverShutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the broker, timer service, watchdog, and database plug-in",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address for /metrics, /health, /ready, /live")
	serveCmd.Flags().String("config", "", "Path to a YAML config file overriding defaults")
	serveCmd.Flags().String("db-dsn", ":memory:", "modernc.org/sqlite DSN for the database plug-in")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		cfg = loaded
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := registry.NewWithCapacity(cfg.MaxActiveObjects)
	b := broker.NewWithCapacity(ctx, cfg.IngressCapacity, cfg.MaxTopics)
	defer b.Stop()

	var periods [timer.MaxTimers]time.Duration
	for i := 0; i < timer.MaxTimers && i < len(cfg.TimerPeriods); i++ {
		periods[i] = cfg.TimerPeriods[i].AsDuration()
	}
	ts := timer.NewServiceWithPeriods(ctx, periods)
	defer ts.Stop()

	wd := watchdog.New(watchdog.Config{
		Name:               "watchdog",
		Publisher:          b,
		Registry:           reg,
		Timers:             ts,
		HeartbeatThreshold: cfg.HeartbeatThreshold.AsDuration(),
		MailboxCapacity:    cfg.MailboxCapacity,
	})
	if err := wd.Start(ctx); err != nil {
		return fmt.Errorf("serve: start watchdog: %w", err)
	}
	defer wd.Stop(ctx)

	dsn, _ := cmd.Flags().GetString("db-dsn")
	db, err := dbworker.New(dbworker.Config{
		Name:            "dbworker",
		Publisher:       b,
		Registry:        reg,
		DSN:             dsn,
		MailboxCapacity: cfg.MailboxCapacity,
	})
	if err != nil {
		return fmt.Errorf("serve: construct dbworker: %w", err)
	}
	if err := db.Start(ctx); err != nil {
		return fmt.Errorf("serve: start dbworker: %w", err)
	}
	defer db.Stop(ctx)
	defer db.Close()

	collector := metrics.NewCollector(reg)
	collector.Start()
	defer collector.Stop()

	metrics.SetVersion(Version)
	metrics.RegisterComponent("broker", true, "started")
	metrics.RegisterComponent("timer", true, "started")
	metrics.RegisterComponent("watchdog", true, "started")

	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())
	mux.Handle("/ws", newWSEndpoint(b, reg, cfg.MailboxCapacity))
	server := &http.Server{Addr: metricsAddr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithComponent("rtefd").Error().Err(err).Msg("metrics server error")
		}
	}()
	logger := log.WithComponent("rtefd")
	logger.Info().Str("addr", metricsAddr).Msg("metrics endpoint started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverShutdownGrace)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
