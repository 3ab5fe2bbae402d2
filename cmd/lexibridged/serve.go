// cmd/lexibridged/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openavctl/lexibridge/internal/config"
	"github.com/openavctl/lexibridge/internal/conn"
	"github.com/openavctl/lexibridge/internal/dispatch"
	"github.com/openavctl/lexibridge/internal/driver"
	"github.com/openavctl/lexibridge/internal/httpapi"
	"github.com/openavctl/lexibridge/internal/logging"
	"github.com/openavctl/lexibridge/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge daemon",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	config.Normalize(cfg)

	log, err := logging.Init(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Build the driver stack
	// --------------------

	met := metrics.New(prometheus.DefaultRegisterer)

	cm := conn.New(conn.Config{
		Host:           cfg.Receiver.Host,
		Port:           cfg.Receiver.Port,
		DialTimeout:    ms(cfg.Receiver.ConnectTimeoutMs),
		RetryInterval:  ms(cfg.Receiver.RetryIntervalMs),
		FailureCounter: met.ConnectFailures,
	}, log.Named("conn"))

	disp := dispatch.New(cm, ms(cfg.Receiver.ReadTimeoutMs), log.Named("dispatch"))

	drv := driver.New(disp, driver.Config{
		ProbeTimeout:    ms(cfg.Receiver.ProbeTimeoutMs),
		PowerOnWindow:   ms(cfg.Poll.PowerOnWindowMs),
		StartupInterval: ms(cfg.Poll.StartupIntervalMs),
		OnInterval:      ms(cfg.Poll.OnIntervalMs),
		OffInterval:     ms(cfg.Poll.OffIntervalMs),
		StartupPolls:    cfg.Poll.StartupPolls,
		MinSpacing:      ms(cfg.Poll.MinSpacingMs),
		InputAliases:    cfg.InputAliases(),
	}, met, log.Named("driver"))

	// --------------------
	// HTTP surface (optional)
	// --------------------

	httpDone := make(chan struct{})
	if cfg.HTTP.Enable {
		srv := httpapi.New(drv, log.Named("http"))
		go func() {
			defer close(httpDone)
			if err := srv.Run(ctx, cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http api stopped", zap.Error(err))
			}
		}()
	} else {
		close(httpDone)
	}

	log.Info("bridge started",
		zap.String("receiver", fmt.Sprintf("%s:%d", cfg.Receiver.Host, cfg.Receiver.Port)))

	drv.Run(ctx)

	// Let the HTTP surface drain before the process exits.
	<-httpDone

	log.Info("bridge stopped")
	return nil
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
