// SPDX-License-Identifier: MIT

// Package lstsq solves linear least-squares problems A·x = b for one or many
// right-hand sides and propagates uncertainties into the fitted parameters.
//
// The solver decomposes A (or a weighted copy of it) by thin SVD and applies
// a rank-truncated pseudo-inverse: singular values below rcond·s_max are
// dropped, so near-singular systems yield finite parameters instead of
// amplified noise. Truncated directions contribute zero to both the
// parameters and their uncertainties.
//
// Strategies (selected once per call):
//
//	WeightingNone         no sigma, no weighting: one SVD, covariance shared by all columns
//	WeightingPropagated   sigma, no weighting: one SVD, sigma propagated per column
//	WeightingExplicit     sigma, weighting: one SVD per column of A/|sigma|
//	WeightingStatistical  no sigma, weighting: one SVD per column of A/sqrt(|b|)
//
// combined with an OutputMode: parameters only, with uncertainties, or with
// full covariance matrices.
//
// Errors:
//
//	ErrDimension      nil operand, A/b row mismatch, sigma not broadcastable
//	ErrConfiguration  invalid option value
//	ErrNumerical      NaN/Inf input, SVD did not converge
//
// Concurrency:
//
//	Solve is safe for concurrent use. WithWorkers parallelizes the per-column
//	loops; each column owns its output slots, so results do not depend on
//	the worker count.
package lstsq
