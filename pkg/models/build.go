// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"strings"

	"github.com/mitchellh/copystructure"
	"github.com/sirupsen/logrus"
)

// Build is one gear choice per slot, ItemIDs follows the problem slot order and "" marks an empty slot.
type Build struct {
	WeaponID string   `json:"weaponId"`
	ItemIDs  []string `json:"itemIds"`
}

// CompareBuilds orders builds by their per-slot item ids, then by weapon id.
// It is the tie-break for builds with the same value.
func CompareBuilds(a, b Build) int {
	n := min(len(a.ItemIDs), len(b.ItemIDs))
	for i := 0; i < n; i++ {
		if c := strings.Compare(a.ItemIDs[i], b.ItemIDs[i]); c != 0 {
			return c
		}
	}
	if len(a.ItemIDs) != len(b.ItemIDs) {
		if len(a.ItemIDs) < len(b.ItemIDs) {
			return -1
		}
		return 1
	}
	return strings.Compare(a.WeaponID, b.WeaponID)
}

func (b Build) String() string {
	return b.WeaponID + "|" + strings.Join(b.ItemIDs, ",")
}

// ScoredBuild is a build together with its target value.
type ScoredBuild struct {
	Build Build   `json:"build"`
	Value float64 `json:"value"`
}

// PlotPoint is the best build found for one axis bucket.
type PlotPoint struct {
	Key   int64   `json:"key"`
	Axis  float64 `json:"axis"`
	Value float64 `json:"value"`
	Build Build   `json:"build"`
}

// SolveResult is the merged outcome of a successful solve.
type SolveResult struct {
	SolveID string        `json:"solveId"`
	Builds  []ScoredBuild `json:"builds"`
	Plot    []PlotPoint   `json:"plot,omitempty"`
}

// Copy returns a deep copy, results are shared between the solver and its callers.
func (r SolveResult) Copy() SolveResult {
	copied, err := copystructure.Copy(r)
	if err != nil {
		logrus.Warn("failed copy solve result:", err)
		return r
	}
	return copied.(SolveResult)
}
