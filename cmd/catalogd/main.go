// Command catalogd serves the book catalog REST API from a SQLite database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"book-catalog/config"
	"book-catalog/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile, addr, dbPath string

	cmd := &cobra.Command{
		Use:           "catalogd",
		Short:         "Serve the book catalog API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.Server.DBPath = dbPath
			}
			logger, err := config.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serve(cfg, logger)
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: bookshelf.yaml in . or ./config)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path, overrides server.db_path")
	return cmd
}

func serve(cfg *config.Config, logger *zap.Logger) error {
	gin.SetMode(cfg.Server.Mode)

	db, err := server.NewDatabase(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	logger.Info("database opened", zap.String("path", cfg.Server.DBPath))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	router := server.NewRouter(db, db, server.NewMetrics(reg), logger)
	srv := server.New(cfg.Server.Addr, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
