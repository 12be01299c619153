package scheduler

import "errors"

var (
	// ErrAlreadyScheduled is returned when the target minute already holds
	// a notification.
	ErrAlreadyScheduled = errors.New("a notification is already scheduled for this minute")
	// ErrNotFound is returned when the target minute holds no notification.
	ErrNotFound = errors.New("no notification is scheduled for this minute")
	// ErrDeliveryFailure is returned when an alert was delivered without
	// its sound. The schedule itself is still updated.
	ErrDeliveryFailure = errors.New("notification delivery failed")
)
