package tools

import "errors"

var (
	// ErrDuplicateTool is returned when a descriptor name is registered twice.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrInvalidDescriptor is returned for descriptors without a name or handler.
	ErrInvalidDescriptor = errors.New("invalid tool descriptor")

	// ErrUnknownTool is reported when dispatching a name the catalog does not hold.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrValidation wraps every argument validation failure.
	ErrValidation = errors.New("invalid arguments")
)

var errUnspecifiedFailure = errors.New("operation failed")
