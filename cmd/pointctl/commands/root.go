package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"collection-points/internal/app"
	"collection-points/internal/common/config"
	"collection-points/internal/common/logger"
)

var (
	configPath  string
	metricsAddr string
	logLevel    string

	appCtx  *app.App
	zapLog  *zap.Logger
	metrics *http.Server
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pointctl",
		Short:        "Register recycling collection points",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			if metricsAddr != "" {
				cfg.Metrics.Enabled = true
				cfg.Metrics.Address = metricsAddr
			}

			zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
			log := logger.NewZapAdapter(zapLog)

			appCtx, err = app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			if cfg.Metrics.Enabled {
				startMetrics(cfg.Metrics.Address, log)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return shutdown()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./configs/config.yaml)")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (e.g. :9090)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(statesCmd(), citiesCmd(), itemsCmd(), createCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func startMetrics(addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("metrics server listening", map[string]interface{}{"address": addr})
		if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
}

func shutdown() error {
	var err error
	if metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metrics.Shutdown(ctx)
		cancel()
	}
	if appCtx != nil {
		err = appCtx.Close()
	}
	if zapLog != nil {
		_ = zapLog.Sync()
	}
	return err
}
