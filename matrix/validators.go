// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for nil, shape and finiteness checks.
//  - Keep kernels minimal by delegating guard logic here.
//  - Return sentinel errors tagged with the validator name so call sites can wrap uniformly.
//
// Note:
//  - Composite validators follow a fixed sequence (NotNil → Shape → Values).
//  - All checks are pure and deterministic; only ValidateFinite walks the data.

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
// A typed nil *Dense stored in the interface is also rejected.
// Complexity: O(1).
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSameShape ensures matrices a and b have equal dimensions.
// Assumes a and b are not nil.
// Complexity: O(1).
func ValidateSameShape(a, b Matrix) error {
	if a.Rows() != b.Rows() {
		return validatorErrorf("ValidateSameShape: Rows", ErrDimensionMismatch)
	}
	if a.Cols() != b.Cols() {
		return validatorErrorf("ValidateSameShape: Columns", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSameRows ensures a and b share the leading dimension (NotNil → Rows).
// This is the model-matrix / observation compatibility check.
// Complexity: O(1).
func ValidateSameRows(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf("ValidateSameRows", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf("ValidateSameRows", err)
	}
	if a.Rows() != b.Rows() {
		return validatorErrorf("ValidateSameRows", ErrDimensionMismatch)
	}

	return nil
}

// ValidateMulCompatible checks (NotNil(a) → NotNil(b) → a.Cols == b.Rows).
// Complexity: O(1).
func ValidateMulCompatible(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf("ValidateMulCompatible", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf("ValidateMulCompatible", err)
	}
	if a.Cols() != b.Rows() {
		return validatorErrorf("ValidateMulCompatible", ErrDimensionMismatch)
	}

	return nil
}

// ValidateVecLen ensures the vector is non-nil and has exactly n entries.
// Complexity: O(1).
func ValidateVecLen(x []float64, n int) error {
	if x == nil {
		return validatorErrorf("ValidateVecLen", ErrNilMatrix)
	}
	if len(x) != n {
		return validatorErrorf("ValidateVecLen", ErrDimensionMismatch)
	}

	return nil
}

// ValidateFinite ensures every element of m is finite (NotNil → Values).
// The error carries the first offending coordinate.
// Complexity: O(r*c).
func ValidateFinite(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateFinite", err)
	}

	rows, cols := m.Rows(), m.Cols()
	if d, ok := m.(*Dense); ok {
		for idx, v := range d.data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return validatorErrorf("ValidateFinite", denseErrorf(ctxAt, idx/cols, idx%cols, ErrNaNInf))
			}
		}

		return nil
	}

	var i, j int
	var v float64
	var err error
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return validatorErrorf("ValidateFinite", err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return validatorErrorf("ValidateFinite", fmt.Errorf("At(%d,%d): %w", i, j, ErrNaNInf))
			}
		}
	}

	return nil
}

// ValidateFiniteVec ensures every entry of x is finite.
// Complexity: O(n).
func ValidateFiniteVec(x []float64) error {
	if x == nil {
		return validatorErrorf("ValidateFiniteVec", ErrNilMatrix)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf("ValidateFiniteVec", fmt.Errorf("index %d: %w", i, ErrNaNInf))
		}
	}

	return nil
}
