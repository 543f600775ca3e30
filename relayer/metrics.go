// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package relayer

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	successfulRelayMessageCount  *prometheus.CounterVec
	skippedMessageCount          *prometheus.CounterVec
	createSignedMessageLatencyMS *prometheus.GaugeVec
	failedRelayMessageCount      *prometheus.CounterVec
	submitAttemptCount           *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := Metrics{
		successfulRelayMessageCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_relay_message_count",
				Help: "Number of messages that relayed successfully",
			},
			[]string{"destination_chain_id", "source_chain_id"},
		),
		skippedMessageCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skipped_relay_message_count",
				Help: "Number of observed messages addressed to another destination",
			},
			[]string{"destination_chain_id", "source_chain_id"},
		),
		createSignedMessageLatencyMS: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "create_signed_message_latency_ms",
				Help: "Latency of creating a signed message in milliseconds",
			},
			[]string{"destination_chain_id", "source_chain_id"},
		),
		failedRelayMessageCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "failed_relay_message_count",
				Help: "Number of messages that failed to relay",
			},
			[]string{"destination_chain_id", "source_chain_id", "failure_reason"},
		),
		submitAttemptCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "submit_attempt_count",
				Help: "Number of attempts to submit a signed message to the destination",
			},
			[]string{"destination_chain_id", "source_chain_id"},
		),
	}

	registerer.MustRegister(m.successfulRelayMessageCount)
	registerer.MustRegister(m.skippedMessageCount)
	registerer.MustRegister(m.createSignedMessageLatencyMS)
	registerer.MustRegister(m.failedRelayMessageCount)
	registerer.MustRegister(m.submitAttemptCount)

	return &m
}
