package types

import "errors"

// Error taxonomy. Wrap with fmt.Errorf("...: %w", ErrX) and test with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrPrecondition = errors.New("precondition failed")
	ErrConflict     = errors.New("conflict")
	ErrStore        = errors.New("store failure")
)
