package alert

import "errors"

var (
	ErrUnknownType      = errors.New("unknown alert type")
	ErrUnknownStatus    = errors.New("unknown alert status")
	ErrUnknownTimeFrame = errors.New("unknown time frame")

	ErrCriteriaTargetMismatch = errors.New("criteria target does not match alert type")
	ErrMinAboveMax            = errors.New("pattern min value exceeds max value")
	ErrNegativePatternValue   = errors.New("pattern value bounds must not be negative")

	ErrNotFound       = errors.New("alert not found")
	ErrDuplicate      = errors.New("an identical alert already exists")
	ErrQuotaExceeded  = errors.New("alert quota exceeded for subscription tier")
	ErrDeleted        = errors.New("alert is deleted")
	ErrNotPatternType = errors.New("alert is not a pattern alert")
)
