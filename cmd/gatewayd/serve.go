// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/api"
	"github.com/luxfi/gateway/config"
	"github.com/luxfi/gateway/host"
	"github.com/luxfi/gateway/precompile"
	"github.com/luxfi/gateway/receiver"
	"github.com/luxfi/gateway/storage"
	"github.com/luxfi/geth/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	gatewayStoreName  = "gateway"
	readHeaderTimeout = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a gateway node",
		Long: `Install the gateway into the configured store on first start, or
reattach to it afterwards, and serve it over HTTP.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(&cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return serve(cmd.Context(), logger, &cfg)
		},
	}
	config.AddFlags(cmd.Flags())
	return cmd
}

func serve(ctx context.Context, logger *zap.Logger, cfg *config.Config) error {
	logger.Info("Initializing gateway")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := openStore(ctx, cfg, gatewayStoreName)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	admins, err := cfg.GetAdminCallers()
	if err != nil {
		return err
	}
	authorizer := gateway.AllowAll
	if len(admins) > 0 {
		authorizer = gateway.NewAllowList(admins...)
	}

	h := host.New(logger.Named("host"))
	opts := []gateway.Option{
		gateway.WithLogger(logger.Named("gateway")),
		gateway.WithAuthorizer(authorizer),
		gateway.WithMetrics(gateway.NewMetrics(registry)),
		gateway.WithCacheSize(cfg.SignatureCacheSize),
	}
	g, contract, err := attachOrInstall(ctx, logger, h, store, cfg, admins, opts)
	if err != nil {
		return err
	}
	if _, err := h.Deploy(receiver.NoopName, receiver.Noop{}); err != nil {
		return err
	}
	if _, err := h.Deploy(receiver.CounterName, receiver.NewCounter()); err != nil {
		return err
	}

	errGroup, ctx := errgroup.WithContext(ctx)

	events := api.NewEventLog(logger.Named("events"), cfg.EventHistorySize)
	errGroup.Go(func() error {
		events.Run(ctx, g.Events())
		return nil
	})

	tokens, err := cfg.GetAPITokens()
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		logger.Warn("No API tokens configured, only execute requests will be accepted")
	}
	server := api.NewServer(
		logger.Named("api"),
		api.NewCredentials(tokens),
		g,
		h,
		contract,
		events,
		api.NewMetrics(registry),
		registry,
	)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           server.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errGroup.Go(func() error {
		// Handle graceful shutdown
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), readHeaderTimeout)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
			g.Events().Close()
		}()

		logger.Info(
			"Initialization complete",
			zap.Uint16("apiPort", cfg.APIPort),
			zap.Stringer("localChainID", g.LocalChainID()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		return nil
	})

	if err := errGroup.Wait(); err != nil {
		logger.Error("Exited with error", zap.Error(err))
		return err
	}
	logger.Info("Gateway stopped")
	return nil
}

// attachOrInstall reattaches to an installed gateway, installing it first
// when the store is empty. Chains configured as supported are enabled at
// installation, on behalf of the first admin when there is one.
func attachOrInstall(
	ctx context.Context,
	logger *zap.Logger,
	h *host.Host,
	store storage.Store,
	cfg *config.Config,
	admins [][]byte,
	opts []gateway.Option,
) (*gateway.Gateway, common.Hash, error) {
	g, contract, err := precompile.Attach(ctx, h, precompile.GatewayName, store, opts...)
	if err == nil {
		logger.Info("Attached to installed gateway", zap.Stringer("localChainID", g.LocalChainID()))
		return g, contract, nil
	}
	if !errors.Is(err, gateway.ErrMissingKey) {
		return nil, common.Hash{}, fmt.Errorf("failed to open gateway: %w", err)
	}

	relayerKey, err := cfg.GetRelayerPublicKey()
	if err != nil {
		return nil, common.Hash{}, fmt.Errorf("invalid relayer public key: %w", err)
	}
	g, contract, err = precompile.Deploy(
		ctx,
		h,
		precompile.GatewayName,
		store,
		gateway.Config{
			LocalChainID:     gateway.ChainID(cfg.LocalChainID),
			Scheme:           cfg.GetRelayerScheme(),
			RelayerPublicKey: relayerKey,
		},
		opts...,
	)
	if err != nil {
		return nil, common.Hash{}, fmt.Errorf("failed to install gateway: %w", err)
	}

	var admin []byte
	if len(admins) > 0 {
		admin = admins[0]
	}
	for _, chainID := range cfg.SupportedChains {
		if err := g.SetSupportedChain(ctx, admin, gateway.ChainID(chainID), true); err != nil {
			return nil, common.Hash{}, fmt.Errorf("failed to enable chain %d: %w", chainID, err)
		}
	}
	return g, contract, nil
}
