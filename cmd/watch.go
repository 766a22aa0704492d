/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	watchdog "github.com/allbin/serial-watchdog"
	"github.com/allbin/serial-watchdog/internal/notify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const metricsShutdownTimeout = 5 * time.Second

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for USB serial devices and print notifications",
	Long: `Poll for USB serial devices and print a notification whenever a device
is attached or the device list changes. Runs until interrupted.

Events can additionally be published to NATS as JSON and poll metrics can be
served in Prometheus format.

Examples:
  serial-watchdog watch
  serial-watchdog watch --poll-interval 500ms
  serial-watchdog watch --nats-url nats://localhost:4222 --metrics-addr :9109`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closer, err := newLogger(os.Stderr)
		if err != nil {
			return err
		}
		defer closer.Close()
		slog.SetDefault(logger)

		opts := detectorOptions(logger)

		var rec *watchdog.Recorder
		var srv *http.Server
		if addr := viper.GetString("metrics-addr"); addr != "" {
			rec = watchdog.NewRecorder(nil)
			opts = append(opts, watchdog.WithMetrics(rec))
			srv = startMetricsServer(addr, rec, logger)
		}

		det, err := watchdog.New(newLister(), opts...)
		if err != nil {
			return err
		}

		sinks := []notify.Sink{notify.NewConsole(cmd.OutOrStdout())}
		if url := viper.GetString("nats-url"); url != "" {
			pub, err := notify.DialNATS(url, viper.GetString("nats-subject"))
			if err != nil {
				return err
			}
			defer func() {
				if err := pub.Close(); err != nil {
					logger.Warn("Failed to drain NATS connection", slog.Any("error", err))
				}
			}()
			sinks = append(sinks, pub)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// The pump ends when Run closes the event channel.
		pumpDone := make(chan struct{})
		go func() {
			defer close(pumpDone)
			notify.Pump(context.Background(), det.Events(), sinks...)
		}()

		logger.Info("Watching for USB serial devices",
			slog.Duration("interval", det.Interval()),
			slog.Int("devices", len(det.Snapshot())))

		runErr := det.Run(ctx)
		<-pumpDone

		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Metrics server shutdown failed", slog.Any("error", err))
			}
		}

		logger.Info("Watchdog stopped")
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9109)")
	watchCmd.Flags().String("nats-url", "", "Publish events to this NATS server")
	watchCmd.Flags().String("nats-subject", notify.DefaultSubject, "NATS subject for published events")

	_ = viper.BindPFlags(watchCmd.Flags())
}

func startMetricsServer(addr string, rec *watchdog.Recorder, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving metrics", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", slog.Any("error", fmt.Errorf("listen %s: %w", addr, err)))
		}
	}()
	return srv
}
