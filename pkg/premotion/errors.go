package premotion

import "errors"

var (
	// ErrUnknownMotion is returned when no motion is registered under
	// the requested name.
	ErrUnknownMotion = errors.New("unknown pre-motion")

	// ErrAlreadyPlaying is returned when a motion is requested while
	// another is still running.
	ErrAlreadyPlaying = errors.New("pre-motion already playing")
)
