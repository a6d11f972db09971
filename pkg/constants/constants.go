// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package constants

const (
	SlotFlower  = "flower"
	SlotPlume   = "plume"
	SlotSands   = "sands"
	SlotGoblet  = "goblet"
	SlotCirclet = "circlet"
)

// Slots is the default slot order, builds list their item ids in this order.
//
//nolint:gochecknoglobals
var Slots = []string{SlotFlower, SlotPlume, SlotSands, SlotGoblet, SlotCirclet}

const (
	// SetTierTwo and SetTierFour are the piece counts unlocking a set bonus.
	SetTierTwo  = 2
	SetTierFour = 4

	// MaxArtifactLevel is the highest level a gear item can reach.
	MaxArtifactLevel = 20
)

const (
	SolveFunction = "solve"

	// Solve outcomes, used as metric labels and log fields.
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"

	// Combination counter kinds.
	CombinationTested  = "tested"
	CombinationFailed  = "failed"
	CombinationSkipped = "skipped"
)

const (
	// UnitPercent marks a constraint minimum given in display percent.
	UnitPercent = "%"
)
