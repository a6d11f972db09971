// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package formula

// Layout assigns dense indices to stat keys and set ids so a Frame can hold them in slices.
// A layout is extended while a problem is prepared and must not change once frames are created.
type Layout struct {
	stats    map[string]int
	sets     map[string]int
	statKeys []string
	setKeys  []string
}

func NewLayout() *Layout {
	return &Layout{
		stats: make(map[string]int),
		sets:  make(map[string]int),
	}
}

// Stat returns the index of key, registering it when absent.
func (l *Layout) Stat(key string) int {
	if i, ok := l.stats[key]; ok {
		return i
	}
	i := len(l.statKeys)
	l.stats[key] = i
	l.statKeys = append(l.statKeys, key)
	return i
}

// Set returns the index of the set id, registering it when absent.
func (l *Layout) Set(set string) int {
	if i, ok := l.sets[set]; ok {
		return i
	}
	i := len(l.setKeys)
	l.sets[set] = i
	l.setKeys = append(l.setKeys, set)
	return i
}

func (l *Layout) LookupStat(key string) (int, bool) {
	i, ok := l.stats[key]
	return i, ok
}

func (l *Layout) LookupSet(set string) (int, bool) {
	i, ok := l.sets[set]
	return i, ok
}

func (l *Layout) NumStats() int {
	return len(l.statKeys)
}

func (l *Layout) NumSets() int {
	return len(l.setKeys)
}

func (l *Layout) StatKeys() []string {
	return l.statKeys
}

func (l *Layout) SetKeys() []string {
	return l.setKeys
}
