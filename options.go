// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"github.com/luxfi/gateway/crypto/signature"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const DefaultCacheSize = 4096

type options struct {
	logger     *zap.Logger
	registry   *signature.Registry
	dispatcher Dispatcher
	authorizer Authorizer
	events     *EventFeed
	metrics    *Metrics
	cacheSize  int
}

// Option configures a Gateway.
type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegistry selects the signature schemes the gateway can be installed
// with.
func WithRegistry(registry *signature.Registry) Option {
	return func(o *options) { o.registry = registry }
}

// WithDispatcher sets where admitted inbound messages are delivered.
func WithDispatcher(dispatcher Dispatcher) Option {
	return func(o *options) { o.dispatcher = dispatcher }
}

// WithAuthorizer guards set_supported_chain. The default admits everyone.
func WithAuthorizer(authorizer Authorizer) Option {
	return func(o *options) { o.authorizer = authorizer }
}

func WithEventFeed(events *EventFeed) Option {
	return func(o *options) { o.events = events }
}

func WithMetrics(metrics *Metrics) Option {
	return func(o *options) { o.metrics = metrics }
}

// WithCacheSize bounds the in-memory caches of executed digests and
// archived messages.
func WithCacheSize(size int) Option {
	return func(o *options) { o.cacheSize = size }
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:     zap.NewNop(),
		registry:   signature.Default,
		dispatcher: noRecipients,
		authorizer: AllowAll,
		cacheSize:  DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.events == nil {
		o.events = NewEventFeed(o.logger)
	}
	if o.metrics == nil {
		o.metrics = NewMetrics(prometheus.NewRegistry())
	}
	o.events.dropped = o.metrics.droppedSentEventCount.Inc
	return o
}
