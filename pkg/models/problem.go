// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"fmt"
	"math"

	validator "github.com/AccelByte/justice-input-validation-go"

	"github.com/AccelByte/extend-build-optimizer/pkg/constants"
	"github.com/AccelByte/extend-build-optimizer/pkg/formula"
)

// Constraint rejects a build whose node value is below Min.
type Constraint struct {
	Node formula.Node
	Min  float64
}

// Exclusion forbids reaching the Pieces bonus tier of Set.
// Forbidding the 2 piece tier rejects 2 and 3 equipped pieces, forbidding the 4 piece tier rejects 4 or more.
type Exclusion struct {
	Set    string
	Pieces int
}

// Excludes returns true when count equipped pieces of the set reach the forbidden tier.
func (e Exclusion) Excludes(count int) bool {
	switch e.Pieces {
	case constants.SetTierTwo:
		return count >= constants.SetTierTwo && count < constants.SetTierFour
	case constants.SetTierFour:
		return count >= constants.SetTierFour
	}
	return false
}

// PlotConfig enables the plot accumulator: the best build per quantized Axis value.
type PlotConfig struct {
	Axis       formula.Node
	Resolution int
	Step       float64
}

// OptimizationProblem is everything a solve needs. It is owned by the caller and read only while a solve runs.
type OptimizationProblem struct {
	Slots       []string
	Buckets     [][]Bucket // one list per slot, same order as Slots
	WeaponID    string
	BaseStats   map[string]float64
	Conditions  map[string]string
	Target      formula.Node
	Constraints []Constraint
	Exclusions  []Exclusion
	Plot        *PlotConfig
	TopN        int
	MaxWorkers  int // 0 uses the configured default
}

type problemLimits struct {
	TopN       int `valid:"range(1|100000)"`
	MaxWorkers int `optional:"true" valid:"range(0|4096)"`
}

type plotLimits struct {
	Resolution int `valid:"range(1|100000)"`
}

// Validate reports the first configuration error of the problem.
func (p *OptimizationProblem) Validate() error {
	if len(p.Slots) == 0 {
		return ValidationErrorNoSlots
	}
	if len(p.Buckets) != len(p.Slots) {
		return fmt.Errorf("%w: %d slots, %d bucket lists", ValidationErrorSlotMismatch, len(p.Slots), len(p.Buckets))
	}
	for i, slot := range p.Slots {
		if len(p.Buckets[i]) == 0 {
			return fmt.Errorf("%w: %s", ValidationErrorEmptySlot, slot)
		}
		for _, bucket := range p.Buckets[i] {
			if bucket.Slot != slot {
				return fmt.Errorf("%w: bucket of %s listed under %s", ValidationErrorSlotMismatch, bucket.Slot, slot)
			}
		}
	}
	if p.TotalCombinations() < 0 {
		return ValidationErrorTooManyBuilds
	}
	if p.Target == nil {
		return ValidationErrorNoTarget
	}
	if p.TopN <= 0 {
		return fmt.Errorf("%w: %d", ValidationErrorNonPositiveTopN, p.TopN)
	}
	if p.MaxWorkers < 0 {
		return fmt.Errorf("%w: %d", ValidationErrorInvalidWorkers, p.MaxWorkers)
	}
	if _, err := validator.ValidateStruct(problemLimits{TopN: p.TopN, MaxWorkers: p.MaxWorkers}); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	for i, constraint := range p.Constraints {
		if constraint.Node == nil {
			return fmt.Errorf("%w: constraint %d", ValidationErrorNilConstraint, i)
		}
		if math.IsNaN(constraint.Min) {
			return fmt.Errorf("%w: constraint %d", ValidationErrorInvalidMinimum, i)
		}
	}
	for _, exclusion := range p.Exclusions {
		if exclusion.Set == "" || (exclusion.Pieces != constants.SetTierTwo && exclusion.Pieces != constants.SetTierFour) {
			return fmt.Errorf("%w: %q %d", ValidationErrorInvalidExclusion, exclusion.Set, exclusion.Pieces)
		}
	}
	if p.Plot != nil {
		if p.Plot.Axis == nil || p.Plot.Resolution <= 0 || !(p.Plot.Step > 0) || math.IsInf(p.Plot.Step, 0) {
			return ValidationErrorInvalidPlot
		}
		if _, err := validator.ValidateStruct(plotLimits{Resolution: p.Plot.Resolution}); err != nil {
			return fmt.Errorf("%w: %v", ValidationErrorInvalidPlot, err)
		}
	}
	return nil
}

// TotalCombinations is the size of the combination space, the product of the bucket list lengths.
// It returns -1 when the product does not fit in an int64.
func (p *OptimizationProblem) TotalCombinations() int64 {
	if len(p.Buckets) == 0 {
		return 0
	}
	total := int64(1)
	for _, buckets := range p.Buckets {
		n := int64(len(buckets))
		if n == 0 {
			return 0
		}
		if total > math.MaxInt64/n {
			return -1
		}
		total *= n
	}
	return total
}
