// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := setupPrometheusMetrics(registry)

	m.AddCombinations("tested", 10)
	m.AddCombinations("tested", 5)
	m.AddCombinations("failed", 0)
	m.SetActiveWorkers(4)
	m.AddSolveOutcome("completed")
	m.AddSolveElapsedTimeMs("solve", "completed", 3*time.Millisecond)

	assert.Equal(t, float64(15), testutil.ToFloat64(m.combinations.WithLabelValues("tested")))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.activeWorkers))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.solveOutcomes.WithLabelValues("completed")))

	count, err := testutil.GatherAndCount(registry, "ab_optimizer_solve_elapsed_time_ms")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
