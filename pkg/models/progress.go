// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import "time"

// ProgressStatus is a snapshot of the combination counters of a solve.
type ProgressStatus struct {
	Active     bool      `json:"active"`
	Tested     int64     `json:"tested"`
	Failed     int64     `json:"failed"`
	Skipped    int64     `json:"skipped"`
	Total      int64     `json:"total"`
	StartTime  time.Time `json:"startTime"`
	FinishTime time.Time `json:"finishTime"`
}

// Processed returns the number of combinations already accounted for.
func (s ProgressStatus) Processed() int64 {
	return s.Tested + s.Failed + s.Skipped
}

// Elapsed returns the running time of the solve, up to now while it is active.
func (s ProgressStatus) Elapsed() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.FinishTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.FinishTime.Sub(s.StartTime)
}
