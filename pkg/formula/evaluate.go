// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package formula

// Snapshot is a full stat snapshot of one build.
type Snapshot struct {
	Stats      map[string]float64
	SetCounts  map[string]int
	Conditions map[string]string
}

// Evaluate computes the value of root for the snapshot. It is pure and deterministic:
// the same graph and snapshot always give the same value.
func Evaluate(root Node, snap Snapshot) (float64, error) {
	layout := NewLayout()
	program, err := Compile(layout, root)
	if err != nil {
		return 0, err
	}
	frame := program.NewFrame(layout, snap.Conditions)
	frame.Load(layout, snap)
	return frame.Eval(0)
}

// Load replaces the frame snapshot with snap. Keys the layout does not know are ignored.
func (f *Frame) Load(layout *Layout, snap Snapshot) {
	clear(f.Stats)
	clear(f.SetCounts)
	for key, value := range snap.Stats {
		if i, ok := layout.LookupStat(key); ok {
			f.Stats[i] = value
		}
	}
	for set, count := range snap.SetCounts {
		if i, ok := layout.LookupSet(set); ok {
			f.SetCounts[i] = count
		}
	}
	if snap.Conditions != nil {
		f.Conditions = snap.Conditions
	}
	f.Reset()
}
