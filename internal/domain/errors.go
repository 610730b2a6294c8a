package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnknownLocation   = errors.New("unknown location")
	ErrAPIKeyMissing     = errors.New("time api key not configured")
	ErrNetwork           = errors.New("network failure")
	ErrAPI               = errors.New("time api error")
	ErrTimeNotRecognized = errors.New("could not recognize a time in the command")
	ErrInvalidDate       = errors.New("invalid date")
)
