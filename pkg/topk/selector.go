// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package topk keeps the best builds seen by a worker and merges the partial results of all workers.
//
// Builds are ordered by value descending. Equal values are ordered by the per-slot item id tuple
// ascending, then by weapon id (see models.CompareBuilds), so the order is total and the merged
// result does not depend on how the combination space was split.
package topk

import (
	"container/heap"

	"github.com/elliotchance/pie/v2"

	"github.com/AccelByte/extend-build-optimizer/pkg/models"
)

// Better returns true when a ranks before b.
func Better(a, b models.ScoredBuild) bool {
	if a.Value != b.Value {
		return a.Value > b.Value
	}
	return models.CompareBuilds(a.Build, b.Build) < 0
}

// Selector keeps the n best builds pushed into it.
type Selector struct {
	n     int
	worst worstFirst
}

func NewSelector(n int) *Selector {
	return &Selector{n: n, worst: make(worstFirst, 0, n)}
}

func (s *Selector) Len() int {
	return len(s.worst)
}

// Wants returns false when a build of this value can not enter the selection,
// so the caller can skip materializing it.
func (s *Selector) Wants(value float64) bool {
	if s.n <= 0 {
		return false
	}
	return len(s.worst) < s.n || value >= s.worst[0].Value
}

// Push offers a build. The build is kept by reference, it must not be modified afterwards.
func (s *Selector) Push(b models.ScoredBuild) bool {
	if s.n <= 0 {
		return false
	}
	if len(s.worst) < s.n {
		heap.Push(&s.worst, b)
		return true
	}
	if !Better(b, s.worst[0]) {
		return false
	}
	s.worst[0] = b
	heap.Fix(&s.worst, 0)
	return true
}

// Sorted returns the selection best first.
func (s *Selector) Sorted() []models.ScoredBuild {
	return pie.SortUsing(append([]models.ScoredBuild(nil), s.worst...), Better)
}

// Reset empties the selector and keeps its capacity.
func (s *Selector) Reset() {
	s.worst = s.worst[:0]
}

// Merge returns the n best builds of all lists, the same as sorting their concatenation and truncating it.
func Merge(lists [][]models.ScoredBuild, n int) []models.ScoredBuild {
	all := make([]models.ScoredBuild, 0)
	for _, list := range lists {
		all = append(all, list...)
	}
	all = pie.SortUsing(all, Better)
	if len(all) > n {
		all = all[:max(n, 0)]
	}
	return all
}

// worstFirst is a heap with the lowest ranked build at its root.
type worstFirst []models.ScoredBuild

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return Better(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) {
	*h = append(*h, x.(models.ScoredBuild))
}

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
