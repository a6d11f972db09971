// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type OptimizerMetrics interface {
	AddSolveElapsedTimeMs(function, outcome string, elapsedTime time.Duration)
	AddCombinations(kind string, count int64)
	SetActiveWorkers(workers int)
	AddSolveOutcome(outcome string)
}

func NewMetrics(registry *prometheus.Registry) OptimizerMetrics {
	return setupPrometheusMetrics(registry)
}
