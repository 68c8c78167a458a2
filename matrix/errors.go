// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All kernels return these sentinels (optionally wrapped with an operation tag
// via matrixErrorf) and tests check them with errors.Is. No kernel panics on a
// user-triggered error condition.

package matrix

import (
	"errors"
	"fmt"
)

// Every message is prefixed with "matrix: ..." so it can be grepped in logs.
// Do not %w wrap these sentinels when returning them directly from a
// validator; kernels add their operation tag through matrixErrorf.

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive,
	// or that a flat backing slice does not hold exactly rows*cols values.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that a row or column index is outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g. Mul where a.Cols != b.Rows, or a scaling vector of the wrong length.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNilMatrix indicates that a nil Matrix (or nil vector) was passed.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")
)

// matrixErrorf wraps err with an operation tag, preserving the cause via %w.
// Use only when err != nil.
// Complexity: O(1).
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
// Complexity: O(1).
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}
