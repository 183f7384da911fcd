package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adnsv/tabxl/internal/config"
	"github.com/adnsv/tabxl/internal/logger"
	"github.com/adnsv/tabxl/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /export and POST /import over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := config.DefaultEnvConfig
			if addr == "" {
				addr = env.HTTPAddr
			}
			if configPath == "" {
				configPath = env.ReaderConfigPath
			}

			opts := server.Options{
				AppName:        env.AppName,
				MaxUploadBytes: env.MaxUploadBytes,
				CSVEncoding:    env.CSVEncoding,
			}
			if configPath != "" {
				rf, err := config.LoadReaderFile(configPath)
				if err != nil {
					return err
				}
				opts.ReaderConfig = rf.ReaderConfig()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s := server.New(opts)
			errc := make(chan error, 1)
			go func() { errc <- s.Run(addr) }()
			logger.InfoLog(ctx, "listening on %s", addr)

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.InfoLog(ctx, "shutting down")
			return s.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: $TABXL_HTTP_ADDR)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML reader configuration (default: $TABXL_READER_CONFIG)")
	return cmd
}
