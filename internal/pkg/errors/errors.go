package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict is a generic sentinel for uniqueness violations.
	ErrConflict = errors.New("conflict")

	// ErrDuplicateLink means the competency is already linked to the entity.
	ErrDuplicateLink = errors.New("competency already linked")
	// ErrNameConflict means a competency with the same (name, type) already
	// exists; callers should re-run identity resolution rather than resubmit.
	ErrNameConflict = errors.New("competency name conflict")
)
