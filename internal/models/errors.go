package models

import "errors"

// Validation errors.
var (
	ErrMissingEventID   = errors.New("event id is required")
	ErrMissingEventTime = errors.New("event start time is required")
	ErrUnknownSource    = errors.New("unknown event source")
)
