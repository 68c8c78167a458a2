// SPDX-License-Identifier: MIT
// Package lstsq: sentinel error set.
// Every failure returned by Solve and SolveVector matches exactly one of the
// three sentinels below under errors.Is. Lower-level causes from the matrix
// package stay reachable beneath them.

package lstsq

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/lvfit/matrix"
)

var (
	// ErrDimension indicates a shape mismatch between A and b, a nil operand,
	// or a sigma that cannot be broadcast to the shape of b.
	ErrDimension = errors.New("lstsq: dimension error")

	// ErrConfiguration indicates an invalid option value.
	ErrConfiguration = errors.New("lstsq: configuration error")

	// ErrNumerical indicates non-finite input or a decomposition that did not converge.
	ErrNumerical = errors.New("lstsq: numerical error")
)

// lstsqErrorf builds a taxonomy error with a formatted detail message.
// Complexity: O(len(message)).
func lstsqErrorf(tag string, kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", tag, kind, fmt.Sprintf(format, args...))
}

// wrapMatrixErr classifies a matrix-package error under the lstsq taxonomy.
// Errors already carrying an lstsq sentinel only receive the tag.
func wrapMatrixErr(tag string, err error) error {
	if isTaxonomy(err) {
		return fmt.Errorf("%s: %w", tag, err)
	}
	kind := ErrDimension
	if errors.Is(err, matrix.ErrNaNInf) || errors.Is(err, matrix.ErrSVDFailed) {
		kind = ErrNumerical
	}

	return fmt.Errorf("%s: %w: %w", tag, kind, err)
}

// isTaxonomy reports whether err already matches one of the package sentinels.
func isTaxonomy(err error) bool {
	return errors.Is(err, ErrDimension) || errors.Is(err, ErrConfiguration) || errors.Is(err, ErrNumerical)
}
