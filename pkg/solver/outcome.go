// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package solver

import (
	"github.com/AccelByte/extend-build-optimizer/pkg/constants"
	"github.com/AccelByte/extend-build-optimizer/pkg/models"
)

type State int32

const (
	StateInactive State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "ACTIVE"
	}
	return "INACTIVE"
}

// Outcome is the terminal report of a solve. Exactly one of Result, Cancelled and Err is set.
type Outcome struct {
	SolveID   string
	Result    *models.SolveResult
	Status    models.ProgressStatus
	Cancelled bool
	Err       error
}

func (o Outcome) Name() string {
	switch {
	case o.Err != nil:
		return constants.OutcomeFailed
	case o.Cancelled:
		return constants.OutcomeCancelled
	}
	return constants.OutcomeCompleted
}
