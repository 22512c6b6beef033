package resumes

import "errors"

var (
	// ErrNotFound indicates the requested version does not exist.
	ErrNotFound = errors.New("resume version not found")
	// ErrNotOwner indicates the acting user does not own the version.
	ErrNotOwner = errors.New("resume version not owned by user")
	// ErrInvalidTransition indicates the requested state change is not allowed.
	ErrInvalidTransition = errors.New("invalid version state transition")
	// ErrInvalidInput indicates a validation failure on caller input.
	ErrInvalidInput = errors.New("invalid input")
)
