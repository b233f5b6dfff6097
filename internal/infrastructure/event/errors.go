package event

import "errors"

// ErrBusStopped is returned by Publish after Stop has been called
var ErrBusStopped = errors.New("event bus is stopped")
