package scribe

import "errors"

var (
	// ErrUnknownPatch reports a rollback target absent from the
	// document's history.
	ErrUnknownPatch = errors.New("unknown patch")

	// ErrNoOpRollback reports a rollback targeting the latest patch;
	// there is nothing to undo.
	ErrNoOpRollback = errors.New("rollback to latest patch")
)
