// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package testsetup

import (
	"sync"
	"time"

	"github.com/AccelByte/extend-build-optimizer/pkg/metrics"
)

// StubMetrics records what the optimizer reports so tests can assert on it.
type StubMetrics struct {
	mu            sync.Mutex
	Combinations  map[string]int64
	Outcomes      map[string]int
	ActiveWorkers int
}

func (s *StubMetrics) AddSolveElapsedTimeMs(function, outcome string, elapsedTime time.Duration) {
}

func (s *StubMetrics) AddCombinations(kind string, count int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Combinations == nil {
		s.Combinations = make(map[string]int64)
	}
	s.Combinations[kind] += count
}

func (s *StubMetrics) SetActiveWorkers(workers int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ActiveWorkers = workers
}

func (s *StubMetrics) AddSolveOutcome(outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Outcomes == nil {
		s.Outcomes = make(map[string]int)
	}
	s.Outcomes[outcome]++
}

func (s *StubMetrics) Combination(kind string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Combinations[kind]
}

func (s *StubMetrics) Outcome(outcome string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Outcomes[outcome]
}

func NewMetrics() metrics.OptimizerMetrics {
	return &StubMetrics{}
}
