package pipeline

import "errors"

var (
	// ErrDuplicateJob is returned when a batch names the same
	// configuration file twice. Both jobs would write the same beginLine.
	ErrDuplicateJob = errors.New("configuration file listed more than once")

	// ErrStepOrder is returned when a step runs before the step that
	// prepares its input.
	ErrStepOrder = errors.New("step run out of order")
)
