// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type prometheusMetrics struct {
	solveElapsedTime prometheus.HistogramVec
	combinations     prometheus.CounterVec
	activeWorkers    prometheus.Gauge
	solveOutcomes    prometheus.CounterVec
}

func setupPrometheusMetrics(registry *prometheus.Registry) prometheusMetrics {
	factory := promauto.With(registry)

	//nolint:promlinter
	solveElapsedTime := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ab_optimizer_solve_elapsed_time_ms",
			Help:    "A histogram of solve elapsed time in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}, []string{"function", "outcome"})

	combinations := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ab_optimizer_combinations_total",
			Help: "Number of gear combinations processed by kind",
		}, []string{"kind"})

	activeWorkers := factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "ab_optimizer_active_workers",
			Help: "Number of workers of the active solve",
		})

	solveOutcomes := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ab_optimizer_solve_outcomes_total",
			Help: "Number of finished solves by outcome",
		}, []string{"outcome"})

	return prometheusMetrics{
		solveElapsedTime: *solveElapsedTime,
		combinations:     *combinations,
		activeWorkers:    activeWorkers,
		solveOutcomes:    *solveOutcomes,
	}
}

func (metrics prometheusMetrics) AddSolveElapsedTimeMs(function, outcome string, elapsedTime time.Duration) {
	metrics.solveElapsedTime.With(prometheus.Labels{"function": function, "outcome": outcome}).Observe(float64(elapsedTime.Milliseconds()))
}

func (metrics prometheusMetrics) AddCombinations(kind string, count int64) {
	if count <= 0 {
		return
	}
	metrics.combinations.With(prometheus.Labels{"kind": kind}).Add(float64(count))
}

func (metrics prometheusMetrics) SetActiveWorkers(workers int) {
	metrics.activeWorkers.Set(float64(workers))
}

func (metrics prometheusMetrics) AddSolveOutcome(outcome string) {
	metrics.solveOutcomes.With(prometheus.Labels{"outcome": outcome}).Inc()
}
