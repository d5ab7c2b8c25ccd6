package steps

import "errors"

var (
	// ErrPrecondition marks missing inputs or a missing prior artifact.
	ErrPrecondition = errors.New("precondition not met")
	// ErrDestinationExists is returned when a clone target holds files.
	ErrDestinationExists = errors.New("destination exists")
	ErrUserDeclined      = errors.New("declined by user")
	ErrRuntimeMissing    = errors.New("python runtime not found")
)
