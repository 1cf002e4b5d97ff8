// Package errors provides examples of structured error handling in prefabpool.
package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/prefabpool/pkg/errors"
)

// Example demonstrates basic error creation.
func Example() {
	err := errors.New(errors.ErrorTypeValidation, "prefab is nil").
		WithDetail("operation", "spawn")

	fmt.Println(err.Error())

	// Output:
	// validation: prefab is nil
}

// ExampleWrap shows how host failures are wrapped with context.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeInternal, "construct bullet").
		WithDetail("prefab", "bullet")

	if errors.IsType(err, errors.ErrorTypeInternal) {
		fmt.Println("host failure")
	}
	fmt.Println(err)

	// Output:
	// host failure
	// internal: construct bullet: unexpected EOF
}

// ExampleIsType demonstrates that IsType only inspects the outermost error.
func ExampleIsType() {
	dup := errors.New(errors.ErrorTypeConflict, "prefab bullet already registered")
	wrapped := errors.Wrap(dup, errors.ErrorTypeConfig, "load manifest")

	fmt.Printf("conflict: %v\n", errors.IsType(dup, errors.ErrorTypeConflict))
	fmt.Printf("wrapped is config: %v\n", errors.IsType(wrapped, errors.ErrorTypeConfig))
	fmt.Printf("wrapped is conflict: %v\n", errors.IsType(wrapped, errors.ErrorTypeConflict))

	// Output:
	// conflict: true
	// wrapped is config: true
	// wrapped is conflict: false
}

// ExampleNewf shows formatted messages.
func ExampleNewf() {
	err := errors.Newf(errors.ErrorTypeNotFound, "prefab %q not registered", "rocket")
	fmt.Println(err)

	// Output:
	// not_found: prefab "rocket" not registered
}
