// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package formula

import "errors"

var (
	// ErrEvaluationFault is a defect of the graph itself, no combination can be evaluated.
	ErrEvaluationFault = errors.New("formula evaluation fault")

	// ErrCombination is an evaluation failure limited to one stat snapshot (non finite value, index out of table).
	ErrCombination = errors.New("formula evaluation failed for combination")
)
