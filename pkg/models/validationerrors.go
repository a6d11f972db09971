// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"errors"
	"fmt"
)

// ErrConfig is the base of every problem validation error, test it with errors.Is.
var ErrConfig = errors.New("invalid optimization problem")

var (
	ValidationErrorNoSlots          = configError("problem has no slots")
	ValidationErrorSlotMismatch     = configError("bucket lists do not match the problem slots")
	ValidationErrorEmptySlot        = configError("required slot has no gear")
	ValidationErrorUnknownSlot      = configError("unknown slot")
	ValidationErrorNoTarget         = configError("problem has no target node")
	ValidationErrorNonPositiveTopN  = configError("top n must be positive")
	ValidationErrorInvalidWorkers   = configError("worker bound must not be negative")
	ValidationErrorNilConstraint    = configError("constraint has no node")
	ValidationErrorInvalidMinimum   = configError("constraint minimum must be a number")
	ValidationErrorInvalidExclusion = configError("set exclusion must name a set and a 2 or 4 piece tier")
	ValidationErrorInvalidPlot      = configError("plot needs an axis node, a positive resolution and a positive step")
	ValidationErrorInvalidFormula   = configError("invalid formula document")
	ValidationErrorTooManyBuilds    = configError("combination space exceeds the int64 range")
)

func configError(message string) error {
	return fmt.Errorf("%w: %s", ErrConfig, message)
}

var validationErrorCodeMap = map[error]int{
	ValidationErrorNoSlots:          520101,
	ValidationErrorSlotMismatch:     520102,
	ValidationErrorEmptySlot:        520103,
	ValidationErrorUnknownSlot:      520104,
	ValidationErrorNoTarget:         520105,
	ValidationErrorNonPositiveTopN:  520106,
	ValidationErrorInvalidWorkers:   520107,
	ValidationErrorNilConstraint:    520108,
	ValidationErrorInvalidMinimum:   520109,
	ValidationErrorInvalidExclusion: 520110,
	ValidationErrorInvalidPlot:      520111,
	ValidationErrorInvalidFormula:   520112,
	ValidationErrorTooManyBuilds:    520113,
}

// ValidationErrorCode returns a code for the error, wrapped errors are unwrapped.
// It returns log.EIDValidationErrorV1 (20002) if the error is not registered in the map.
func ValidationErrorCode(err error) int {
	for sentinel, code := range validationErrorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return 20002
}
