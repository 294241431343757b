package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/codespire/rca-console/internal/api"
	"github.com/codespire/rca-console/internal/metrics"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var httpAddress, grpcAddress string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST and gRPC console servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()
			if httpAddress != "" {
				deps.cfg.Server.HTTPAddress = httpAddress
			}
			if grpcAddress != "" {
				deps.cfg.Server.GRPCAddress = grpcAddress
			}
			return serve(cmd.Context(), deps)
		},
	}
	cmd.Flags().StringVar(&httpAddress, "http-address", "", "REST listen address (overrides config)")
	cmd.Flags().StringVar(&grpcAddress, "grpc-address", "", "gRPC listen address (overrides config)")
	return cmd
}

func serve(ctx context.Context, deps *consoleDeps) error {
	cfg, logger := deps.cfg, deps.logger
	logger.Info("starting rca-console",
		slog.String("http_address", cfg.Server.HTTPAddress),
		slog.String("grpc_address", cfg.Server.GRPCAddress),
		slog.String("backend", cfg.Clients.Backend.BaseURL))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	grpcServer, err := api.NewServer(cfg.Server, api.NewConsoleService(logger, deps.console))
	if err != nil {
		return err
	}
	httpServer := api.NewHTTPServer(cfg.Server.HTTPAddress, logger, deps.console)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("grpc server listening", slog.String("address", grpcServer.Address()))
		return grpcServer.Start()
	})
	g.Go(httpServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), grpcServer.GracefulTimeout())
		defer cancel()
		grpcServer.Shutdown(shutdownCtx)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown", slog.Any("error", err))
		}
		return nil
	})

	err = g.Wait()
	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("rca-console stopped", slog.Duration("search_p95", deps.console.LatencyP95()))
	return err
}
