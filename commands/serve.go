package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/shiftworks/timeclock/activity"
	"github.com/shiftworks/timeclock/clock"
	"github.com/shiftworks/timeclock/config"
	"github.com/shiftworks/timeclock/devices"
	"github.com/shiftworks/timeclock/ingest"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the time-clock API server",
		Long: `Serve runs the time-clock service: the HTTP API, the hardware event
subscriber on the NATS bus, the activity feed, and the metrics endpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	logger := slog.Default()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Time-entry store ready", "driver", cfg.Snapshot.Driver, "entries", store.Len())

	// Event bus: external or embedded.
	conn, embedded, err := connectBus(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if conn != nil {
			_ = conn.Drain()
			conn.Close()
		}
		if embedded != nil {
			embedded.Shutdown()
			embedded.WaitForShutdown()
		}
	}()

	// Live activity: feed for the monitor plus the bus publisher.
	feed := activity.NewFeed()
	notifiers := []clock.Notifier{feed}
	if conn != nil {
		notifiers = append(notifiers, activity.NewPublisher(conn, cfg.NATS.SubjectPrefix, logger))
	}

	engine := clock.New(store,
		clock.WithNotifier(activity.Multi(notifiers...)),
		clock.WithLogger(logger),
	)

	registry, err := devices.NewRegistry(cfg.Devices.Registry, cfg.Devices.Allow, logger)
	if err != nil {
		return fmt.Errorf("device registry: %w", err)
	}
	if cfg.Devices.Registry != "" {
		if err := registry.Watch(ctx); err != nil {
			logger.Warn("Device registry watch unavailable", "error", err)
		}
	}

	adapter := ingest.NewAdapter(engine, registry, logger)

	if conn != nil {
		sub := ingest.NewSubscriber(conn, adapter, cfg.HardwareSubject(), logger)
		if err := sub.Start(); err != nil {
			return err
		}
		defer sub.Stop()
	}

	mux := http.NewServeMux()
	api := ingest.NewHTTPHandler(adapter, store, feed, registry, logger)
	api.RegisterHTTPHandlers("/api/time-clock", mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Time-clock API listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}

	logger.Info("Timeclock shutdown complete")
	return nil
}

// connectBus connects to the configured NATS server, or starts an
// embedded one when no URL is set. Returns a nil connection when the
// bus is disabled entirely (no URL, embedded off).
func connectBus(cfg *config.Config, logger *slog.Logger) (*nats.Conn, *server.Server, error) {
	if cfg.NATS.URL != "" && !cfg.NATS.Embedded {
		logger.Info("Connecting to NATS", "url", cfg.NATS.URL)
		conn, err := nats.Connect(cfg.NATS.URL,
			nats.Name("timeclock"),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to NATS: %w", err)
		}
		return conn, nil, nil
	}

	if !cfg.NATS.Embedded {
		logger.Info("Event bus disabled; hardware ingestion via HTTP only")
		return nil, nil, nil
	}

	logger.Info("Starting embedded NATS server")
	ns, err := server.NewServer(&server.Options{
		Port:   -1, // Random available port
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create embedded NATS server: %w", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		return nil, nil, fmt.Errorf("embedded NATS server failed to start")
	}

	conn, err := nats.Connect(ns.ClientURL())
	if err != nil {
		ns.Shutdown()
		return nil, nil, fmt.Errorf("connect to embedded NATS: %w", err)
	}

	logger.Info("Embedded NATS server ready", "url", ns.ClientURL())
	return conn, ns, nil
}
