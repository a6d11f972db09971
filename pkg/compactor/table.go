// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package compactor

// Table is a MainStatTable read from a problem document: stat key, rarity, then values indexed by level.
type Table map[string]map[int][]float64

func (t Table) Value(key string, rarity, level int) (float64, bool) {
	levels, ok := t[key][rarity]
	if !ok || level < 0 || level >= len(levels) {
		return 0, false
	}
	return levels[level], true
}
