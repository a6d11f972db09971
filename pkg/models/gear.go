// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

// Substat is one secondary stat line of a gear item.
type Substat struct {
	Key   string  `json:"key"   yaml:"key"`
	Value float64 `json:"value" yaml:"value"`
}

// GearItem is an equippable piece as handed over by the gear store, it is never mutated by the optimizer.
type GearItem struct {
	ID            string    `json:"id"            yaml:"id"`
	Slot          string    `json:"slot"          yaml:"slot"`
	Set           string    `json:"set"           yaml:"set"`
	Rarity        int       `json:"rarity"        yaml:"rarity"`
	Level         int       `json:"level"         yaml:"level"`
	MainStatKey   string    `json:"mainStatKey"   yaml:"mainStatKey"`
	MainStatValue float64   `json:"mainStatValue" yaml:"mainStatValue"`
	Substats      []Substat `json:"substats"      yaml:"substats"`
}

// StatValue is one entry of a contributed stat vector.
type StatValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Bucket groups gear items of one slot that contribute exactly the same stats and set.
// Only the representative is enumerated, ItemIDs keeps every member for display.
type Bucket struct {
	Slot           string      `json:"slot"`
	Set            string      `json:"set,omitempty"`
	Stats          []StatValue `json:"stats"` // sorted by key
	Representative string      `json:"representative"`
	ItemIDs        []string    `json:"itemIds"`
}

// IsEmpty returns true for the placeholder bucket of an unequipped slot in partial builds.
func (b Bucket) IsEmpty() bool {
	return b.Representative == ""
}

// EmptyBucket returns the placeholder bucket used when partial builds are allowed.
func EmptyBucket(slot string) Bucket {
	return Bucket{Slot: slot}
}
