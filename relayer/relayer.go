// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

// Package relayer carries messages sequenced by a source gateway to the
// gateway of their destination chain. It signs each message with the key
// the destination trusts and submits it, retrying transient failures.
package relayer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/relayer/checkpoint"
	"github.com/luxfi/gateway/utils"
	"go.uber.org/zap"
)

const DefaultRelayTimeout = 30 * time.Second

var (
	ErrSourceClosed = errors.New("event source closed")
	ErrRelayStalled = errors.New("message could not be relayed within the relay timeout")
)

// Config describes one relay route.
type Config struct {
	SourceChainID      gateway.ChainID
	DestinationChainID gateway.ChainID
	// Widths used to split canonical messages. Both default to
	// gateway.IdentityLen.
	SenderLen    int
	ReceiverLen  int
	RelayTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.SenderLen == 0 {
		c.SenderLen = gateway.IdentityLen
	}
	if c.ReceiverLen == 0 {
		c.ReceiverLen = gateway.IdentityLen
	}
	if c.RelayTimeout <= 0 {
		c.RelayTimeout = DefaultRelayTimeout
	}
}

// Relayer relays the messages of one route.
type Relayer struct {
	logger     *zap.Logger
	cfg        Config
	signer     gateway.Signer
	source     EventSource
	submitter  Submitter
	checkpoint *checkpoint.Manager
	metrics    *Metrics
}

func New(
	logger *zap.Logger,
	cfg Config,
	signer gateway.Signer,
	source EventSource,
	submitter Submitter,
	cm *checkpoint.Manager,
	metrics *Metrics,
) *Relayer {
	cfg.setDefaults()
	return &Relayer{
		logger: logger.With(
			zap.Stringer("sourceChainID", cfg.SourceChainID),
			zap.Stringer("destinationChainID", cfg.DestinationChainID),
		),
		cfg:        cfg,
		signer:     signer,
		source:     source,
		submitter:  submitter,
		checkpoint: cm,
		metrics:    metrics,
	}
}

// Run relays events until ctx is done, the source closes its stream or a
// message stalls. Later events are not handled past a stalled message;
// the caller resubscribes so the stream resumes at the checkpoint.
func (r *Relayer) Run(ctx context.Context) error {
	events, err := r.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to source events: %w", err)
	}
	r.logger.Info(
		"Relaying messages",
		zap.Uint64("nextNonce", r.checkpoint.NextNonce()),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrSourceClosed
			}
			if err := r.ProcessEvent(ctx, ev); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
		}
	}
}

// ProcessEvent relays a single event. Events below the checkpoint and
// events for other destinations are only acknowledged. A message that
// cannot be delivered within the relay timeout is left unacknowledged, so
// the checkpoint stops before it, and ErrRelayStalled is returned.
func (r *Relayer) ProcessEvent(ctx context.Context, ev gateway.SentEvent) error {
	logger := r.logger.With(
		zap.String("key", ev.Key),
		zap.Uint64("nonce", ev.Nonce),
	)

	if next := r.checkpoint.NextNonce(); ev.Nonce < next {
		logger.Debug(
			"Skipping message below checkpoint",
			zap.Uint64("nextNonce", next),
		)
		return nil
	}
	if ev.DestinationChainID != r.cfg.DestinationChainID {
		logger.Debug(
			"Skipping message for another destination",
			zap.Stringer("eventDestinationChainID", ev.DestinationChainID),
		)
		r.metrics.skippedMessageCount.
			WithLabelValues(r.cfg.DestinationChainID.String(), r.cfg.SourceChainID.String()).
			Inc()
		r.checkpoint.StageCommittedNonce(ev.Nonce)
		return nil
	}

	err := r.relay(ctx, logger, ev)
	var permanent *permanentError
	switch {
	case err == nil:
		logger.Info("Relayed message")
		r.metrics.successfulRelayMessageCount.
			WithLabelValues(r.cfg.DestinationChainID.String(), r.cfg.SourceChainID.String()).
			Inc()
		r.checkpoint.StageCommittedNonce(ev.Nonce)
	case errors.As(err, &permanent):
		logger.Error(
			"Dropping undeliverable message",
			zap.String("reason", permanent.reason),
			zap.Error(err),
		)
		r.incFailed(permanent.reason)
		r.checkpoint.StageCommittedNonce(ev.Nonce)
	default:
		logger.Error(
			"Failed to relay message",
			zap.Error(err),
		)
		r.incFailed("retries_exhausted")
		return fmt.Errorf("%w: nonce %d: %w", ErrRelayStalled, ev.Nonce, err)
	}
	return nil
}

type permanentError struct {
	reason string
	err    error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

func (r *Relayer) relay(ctx context.Context, logger *zap.Logger, ev gateway.SentEvent) error {
	msg, err := gateway.ParseMessage(ev.Message, r.cfg.SenderLen, r.cfg.ReceiverLen)
	if err != nil {
		return &permanentError{reason: "parse", err: err}
	}
	if msg.SourceChainID != r.cfg.SourceChainID {
		return &permanentError{
			reason: "wrong_source",
			err:    fmt.Errorf("message from chain %s on route from %s", msg.SourceChainID, r.cfg.SourceChainID),
		}
	}
	if msg.Nonce != ev.Nonce {
		return &permanentError{
			reason: "nonce_mismatch",
			err:    fmt.Errorf("message nonce %d does not match event nonce %d", msg.Nonce, ev.Nonce),
		}
	}

	startCreateSignedMessageTime := time.Now()
	sig, err := r.signer.Sign(msg)
	if err != nil {
		return &permanentError{reason: "sign", err: err}
	}
	r.metrics.createSignedMessageLatencyMS.
		WithLabelValues(r.cfg.DestinationChainID.String(), r.cfg.SourceChainID.String()).
		Set(float64(time.Since(startCreateSignedMessageTime).Milliseconds()))

	packet := gateway.NewPacket(msg, sig)
	operation := func() error {
		r.metrics.submitAttemptCount.
			WithLabelValues(r.cfg.DestinationChainID.String(), r.cfg.SourceChainID.String()).
			Inc()
		err := r.submitter.Submit(ctx, packet)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gateway.ErrAlreadyExecuted):
			logger.Debug("Message already executed on destination")
			return nil
		case errors.Is(err, gateway.ErrInvalidSignature):
			return utils.Permanent(&permanentError{reason: "invalid_signature", err: err})
		case errors.Is(err, gateway.ErrInvalidReceiver):
			return utils.Permanent(&permanentError{reason: "invalid_receiver", err: err})
		case errors.Is(err, gateway.ErrMissingKey):
			return utils.Permanent(&permanentError{reason: "missing_key", err: err})
		case errors.Is(err, gateway.ErrDispatchFailed):
			return utils.Permanent(&permanentError{reason: "dispatch", err: err})
		default:
			return err
		}
	}
	return utils.WithRetriesTimeout(ctx, logger, operation, r.cfg.RelayTimeout)
}

func (r *Relayer) incFailed(reason string) {
	r.metrics.failedRelayMessageCount.
		WithLabelValues(r.cfg.DestinationChainID.String(), r.cfg.SourceChainID.String(), reason).
		Inc()
}
