// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requestCount     *prometheus.CounterVec
	requestLatencyMS *prometheus.GaugeVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := Metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_request_count",
				Help: "Number of API requests served",
			},
			[]string{"route", "status"},
		),
		requestLatencyMS: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "api_request_latency_ms",
				Help: "Latency of the last API request in milliseconds",
			},
			[]string{"route"},
		),
	}

	registerer.MustRegister(m.requestCount)
	registerer.MustRegister(m.requestLatencyMS)

	return &m
}
