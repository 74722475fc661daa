package wizard

import "errors"

var (
	// ErrAlreadyMounted is returned by Mount on a mounted wizard
	ErrAlreadyMounted = errors.New("wizard: already mounted")

	// ErrNotMounted is returned by navigation triggers before Mount
	ErrNotMounted = errors.New("wizard: not mounted")

	// ErrUnmounted is returned once the wizard has been unmounted
	ErrUnmounted = errors.New("wizard: unmounted")
)
