// Package apperr defines the error taxonomy shared by every vault adapter.
package apperr

import "errors"

var (
	// ErrNotSelected is returned by storage operations invoked before a
	// vault root has been chosen.
	ErrNotSelected = errors.New("no vault selected")

	// ErrNotFound is returned when a path or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the capability backing an
	// adapter was revoked or never granted.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotSupported is returned when a host-exclusive operation is
	// invoked on an adapter that cannot perform it. Adapters must fail
	// with this error rather than silently no-op.
	ErrNotSupported = errors.New("operation not supported in this environment")

	// ErrConflict is returned on checksum mismatch during an update.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyExists is returned when creating a note that already exists.
	ErrAlreadyExists = errors.New("already exists")
)
