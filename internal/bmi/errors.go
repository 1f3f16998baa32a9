package bmi

import (
	"errors"

	"github.com/san-kum/bmisim/internal/config"
	"github.com/san-kum/bmisim/internal/grid"
)

// Domain errors for model operations.
var (
	// ErrConfig indicates the configuration could not be opened or parsed.
	ErrConfig = config.ErrConfig

	// ErrResource indicates the model buffers could not be allocated.
	ErrResource = grid.ErrResource

	// ErrSizeMismatch indicates a buffer whose length is not rows*cols.
	ErrSizeMismatch = grid.ErrSizeMismatch

	// ErrUnknownVariable indicates a name outside the variable table.
	ErrUnknownVariable = errors.New("bmi: unknown variable")

	// ErrInvalidHandle indicates use of a nil or finalized model.
	ErrInvalidHandle = errors.New("bmi: invalid or finalized model handle")

	// ErrNotSettable indicates a known variable that is not an input.
	ErrNotSettable = errors.New("bmi: variable is not settable")

	// ErrTimeRange indicates a target time that cannot be reached.
	ErrTimeRange = errors.New("bmi: target time out of range")
)

// VarError wraps an error with the variable name it concerns.
type VarError struct {
	Name    string
	Op      string
	Wrapped error
}

func (e *VarError) Error() string {
	return e.Op + " " + e.Name + ": " + e.Wrapped.Error()
}

func (e *VarError) Unwrap() error {
	return e.Wrapped
}
