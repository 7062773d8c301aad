package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrRoundInProgress is returned when a round is triggered while one runs
	ErrRoundInProgress = errors.New("pass round already in progress")

	// ErrPrecheckFailed is returned when a round is skipped by its precheck
	ErrPrecheckFailed = errors.New("pass round precheck failed")
)
