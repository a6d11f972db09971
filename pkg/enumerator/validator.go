// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package enumerator

import (
	"github.com/AccelByte/extend-build-optimizer/pkg/models"
)

// Validator rejects a combination before it is evaluated.
type Validator interface {
	// Validate returns false when the combination with these equipped pieces per set must be skipped.
	Validate(setCounts []int) bool
}

type exclusion struct {
	set int
	models.Exclusion
}

// ExclusionValidator rejects combinations that reach a forbidden set bonus tier.
type ExclusionValidator struct {
	exclusions []exclusion
}

// NewExclusionValidator binds exclusions to set count indices, setIndex maps a set id to its index.
func NewExclusionValidator(exclusions []models.Exclusion, setIndex func(set string) int) *ExclusionValidator {
	v := &ExclusionValidator{exclusions: make([]exclusion, 0, len(exclusions))}
	for _, e := range exclusions {
		v.exclusions = append(v.exclusions, exclusion{set: setIndex(e.Set), Exclusion: e})
	}
	return v
}

func (v *ExclusionValidator) Validate(setCounts []int) bool {
	for _, e := range v.exclusions {
		if e.Excludes(setCounts[e.set]) {
			return false
		}
	}
	return true
}

// Empty returns true when no exclusion is configured.
func (v *ExclusionValidator) Empty() bool {
	return len(v.exclusions) == 0
}
