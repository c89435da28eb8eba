package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is an error built from a recovered panic. It keeps the original
// panic value together with the stack captured at recovery time so that a
// failed grid cell can be reported without losing the crash site.
type PanicError struct {
	// PanicValue is the value that was passed to panic().
	PanicValue interface{}

	// StackTrace holds the goroutine stack at the time of recovery.
	StackTrace string

	// Operation names the call in which the panic was recovered.
	Operation string
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap returns nil; a PanicError does not wrap another error.
func (e *PanicError) Unwrap() error {
	return nil
}

// String renders the error together with its captured stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError creates a PanicError for operation, capturing the current stack.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover converts a panic into an error assigned through err. It is meant to
// be deferred at the top of exported methods that do heavy numeric work:
//
//	func (r *Regressor) Fit(X, y mat.Matrix) (err error) {
//	    defer Recover(&err, "Regressor.Fit")
//	    // ...
//	}
//
// If the function already set an error before panicking, the panic information
// wraps that error instead of replacing it.
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		panicErr := NewPanicError(operation, r)

		if *err != nil {
			*err = fmt.Errorf("panic in %s: %v (original error: %w)",
				operation, r, *err)
		} else {
			*err = panicErr
		}
	}
}

// SafeExecute runs fn and converts any panic into a PanicError. Grid cells use
// it so that one misbehaving pipeline stage cannot take down the whole sweep.
//
//	err := SafeExecute("cell standard/onehot", func() error {
//	    return runCell(cfg)
//	})
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
