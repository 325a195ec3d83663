package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when a trigger is requested while stopped
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	// ErrInvalidConfig is returned when scheduler configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
