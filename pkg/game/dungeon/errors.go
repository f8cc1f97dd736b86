package dungeon

import "errors"

var (
	// ErrMemoryExhausted is returned when the grid cannot be allocated.
	// It wraps world.ErrGridTooLarge.
	ErrMemoryExhausted = errors.New("memory exhausted")

	// ErrAborted is returned when the context is cancelled between phases.
	// It wraps the context's error.
	ErrAborted = errors.New("generation aborted")
)
