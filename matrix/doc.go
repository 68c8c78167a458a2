// SPDX-License-Identifier: MIT

// Package matrix provides the dense row-major storage and the small set of
// linear-algebra kernels used by the least-squares solver and the Jacobian
// builder.
//
// The matrix package provides:
//
//   - Dense: a row-major float64 matrix with bounds-checked At/Set that
//     return sentinel errors instead of panicking.
//   - Kernels: Mul, Transpose, MatVec, Scale, ScaleRows, ScaleCols, Gram and
//     Diag. Every kernel allocates a fresh result and never mutates operands.
//   - Validators: a single source of truth for nil, shape and finiteness
//     checks (ValidateNotNil, ValidateMulCompatible, ValidateFinite, ...).
//   - A bridge to gonum (ToGonum / FromGonum) for decompositions that gonum
//     already implements with LAPACK-grade stability (SVD).
//
// Determinism:
//
//	All loops run in fixed i→k→j (or i→j) order, so identical inputs produce
//	bit-identical outputs. Passing *Dense operands unlocks the flat-slice fast
//	path; any other Matrix implementation goes through the generic At/Set path.
//
// Complexity quicksheet:
//
//	NewDense O(r*c); At/Set O(1); Mul O(r*n*c); Gram O(r*r*c); Transpose,
//	Scale, ScaleRows, ScaleCols O(r*c).
package matrix
