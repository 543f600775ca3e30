// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	sentMessageCount      *prometheus.CounterVec
	executedMessageCount  *prometheus.CounterVec
	failedSendCount       *prometheus.CounterVec
	failedExecuteCount    *prometheus.CounterVec
	droppedSentEventCount prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := Metrics{
		sentMessageCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_sent_message_count",
				Help: "Number of outbound messages sequenced",
			},
			[]string{"destination_chain_id"},
		),
		executedMessageCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_executed_message_count",
				Help: "Number of inbound messages dispatched successfully",
			},
			[]string{"source_chain_id"},
		),
		failedSendCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_failed_send_count",
				Help: "Number of rejected send calls",
			},
			[]string{"destination_chain_id", "failure_reason"},
		),
		failedExecuteCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_failed_execute_count",
				Help: "Number of rejected execute calls",
			},
			[]string{"source_chain_id", "failure_reason"},
		),
		droppedSentEventCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_dropped_sent_event_count",
				Help: "Number of sent events dropped for slow subscribers",
			},
		),
	}

	registerer.MustRegister(m.sentMessageCount)
	registerer.MustRegister(m.executedMessageCount)
	registerer.MustRegister(m.failedSendCount)
	registerer.MustRegister(m.failedExecuteCount)
	registerer.MustRegister(m.droppedSentEventCount)

	return &m
}

// failureReason maps an error to a low-cardinality label.
func failureReason(err error) string {
	code, ok := ErrorCode(err)
	if !ok {
		return "internal"
	}
	switch code {
	case CodeUnsupportedChain:
		return "unsupported_chain"
	case CodeAlreadyExecuted:
		return "already_executed"
	case CodeInvalidReceiver:
		return "invalid_receiver"
	case CodeMissingKey:
		return "missing_key"
	case CodeInvalidSignature:
		return "invalid_signature"
	case CodeDispatchFailed:
		return "dispatch"
	default:
		return "unknown"
	}
}
