package errors

import "fmt"

type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}

// ErrInputLoad means a required input table is missing or structurally
// malformed. It is fatal to the whole batch run: the pipeline returns no
// snapshot and the serving layer answers "data unavailable".
type ErrInputLoad struct {
	Table string
	Path  string
	Err   error
}

func (e *ErrInputLoad) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Table, e.Path, e.Err)
}

func (e *ErrInputLoad) Unwrap() error { return e.Err }

// ErrAggregation means an internal invariant was violated while rolling up
// income. Offending entries are excluded and recorded as diagnostics; this
// error only surfaces when a whole rollup is unusable.
type ErrAggregation struct {
	Stage   string
	Message string
}

func (e *ErrAggregation) Error() string {
	return e.Stage + ": " + e.Message
}
