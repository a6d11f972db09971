// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package solver

import "errors"

var (
	// ErrSolveActive is returned by Solve while another solve is running.
	ErrSolveActive = errors.New("a solve is already active")

	// ErrWorkerFault is an unexpected failure inside a worker, it aborts the whole solve.
	ErrWorkerFault = errors.New("solver worker fault")
)
