// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/api"
	"github.com/luxfi/gateway/config"
	"github.com/luxfi/gateway/crypto/signature"
	"github.com/luxfi/gateway/relayer"
	"github.com/luxfi/gateway/relayer/checkpoint"
	"github.com/luxfi/gateway/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	relayerStoreName    = "relayer"
	resubscribeInterval = 5 * time.Second
)

func newRelayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Relay messages from a source gateway to a destination gateway",
		Long: `Follow the outbound messages of the source gateway, sign the ones
addressed to the destination chain and execute them on the destination
gateway. Progress is checkpointed in the configured store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.ValidateRelayer(); err != nil {
				return fmt.Errorf("failed to validate configuration: %w", err)
			}
			logger, err := newLogger(&cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return relay(cmd.Context(), logger, &cfg)
		},
	}
	config.AddFlags(cmd.Flags())
	return cmd
}

func relay(ctx context.Context, logger *zap.Logger, cfg *config.Config) error {
	logger.Info("Initializing relayer")

	sourceChainID := gateway.ChainID(cfg.RelayerSourceChainID)
	destinationChainID := gateway.ChainID(cfg.RelayerDestinationChainID)

	signingKey, err := cfg.GetRelayerSigningKey()
	if err != nil {
		return err
	}
	sk, err := signature.Default.NewSigner(cfg.GetRelayerScheme(), signingKey)
	if err != nil {
		return fmt.Errorf("failed to load relayer signing key: %w", err)
	}
	store, err := openStore(ctx, cfg, relayerStoreName)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	writeSignal := make(chan struct{})
	cm, err := checkpoint.NewManager(ctx, logger.Named("checkpoint"), store, writeSignal, sourceChainID, destinationChainID, 0)
	if err != nil {
		return err
	}
	cm.Run(ctx)

	source := api.NewClient(cfg.RelayerSourceURL, "")
	destination := api.NewClient(cfg.RelayerDestinationURL, cfg.RelayerAPIToken)
	if err := checkDestination(ctx, destination, destinationChainID, sk); err != nil {
		return err
	}

	r := relayer.New(
		logger.Named("relayer"),
		relayer.Config{
			SourceChainID:      sourceChainID,
			DestinationChainID: destinationChainID,
			RelayTimeout:       time.Duration(cfg.RelayTimeoutSeconds) * time.Second,
		},
		gateway.NewSigner(sk, destinationChainID),
		api.NewEventStream(source, logger.Named("events"), cm.NextNonce),
		destination,
		cm,
		relayer.NewMetrics(prometheus.NewRegistry()),
	)

	errGroup, ctx := errgroup.WithContext(ctx)
	errGroup.Go(func() error {
		// Periodically write the checkpoint, and once more on the way out.
		defer close(writeSignal)
		ticker := time.NewTicker(time.Duration(cfg.CheckpointWriteIntervalSeconds) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return cm.WriteToStore(context.Background())
			case <-ticker.C:
				writeSignal <- struct{}{}
			}
		}
	})
	errGroup.Go(func() error {
		for {
			err := r.Run(ctx)
			if ctx.Err() != nil {
				return nil
			}
			// a stalled message is retried by resubscribing at the checkpoint
			logger.Warn(
				"Relaying stopped, resubscribing",
				zap.Error(err),
				zap.Uint64("nextNonce", cm.NextNonce()),
				zap.Duration("after", resubscribeInterval),
			)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(resubscribeInterval):
			}
		}
	})

	logger.Info(
		"Initialization complete",
		zap.Stringer("sourceChainID", sourceChainID),
		zap.Stringer("destinationChainID", destinationChainID),
		zap.Uint64("nextNonce", cm.NextNonce()),
	)
	if err := errGroup.Wait(); err != nil {
		logger.Error("Exited with error", zap.Error(err))
		return err
	}
	logger.Info("Relayer stopped")
	return nil
}

var errKeyMismatch = errors.New("destination gateway does not trust the relayer key")

// checkDestination makes sure the destination gateway is installed on the
// configured chain and trusts the signing key.
func checkDestination(ctx context.Context, c *api.Client, chainID gateway.ChainID, sk signature.Signer) error {
	info, err := c.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to query destination gateway: %w", err)
	}
	if gateway.ChainID(info.LocalChainID) != chainID {
		return fmt.Errorf("%w: destination gateway runs on chain %d", gateway.ErrWrongDestinationChainID, info.LocalChainID)
	}
	if info.Scheme != string(sk.Scheme()) || info.RelayerPublicKey != utils.EncodeHexString(sk.PublicKey()) {
		return errKeyMismatch
	}
	return nil
}
