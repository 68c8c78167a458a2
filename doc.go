// SPDX-License-Identifier: MIT

// Package lvfit is a small toolkit for linear least-squares fitting with
// honest error bars: solve A·x = b for one or many right-hand sides and get
// parameter uncertainties and covariances propagated from the data.
//
// What is inside?
//
//	matrix/    dense row-major storage, validators, kernels and a thin SVD bridge to gonum
//	lstsq/     the solver: unweighted, sigma-propagated, sigma-weighted and
//	           statistically weighted fits, rank-truncated pseudo-inverse,
//	           batched columns, positional or labeled (digested) output
//	jacobian/  model matrices for black-box models by central differences or
//	           analytic derivatives, plus one Gauss–Newton linearization step
//
// Quick example:
//
//	a, _ := matrix.NewDenseFrom(4, 2, []float64{0, 1, 1, 1, 2, 1, 3, 1})
//	res, _ := lstsq.SolveVector(a, []float64{-1, 0.2, 0.9, 2.1})
//	// res.Parameters ≈ [1.0, -0.95], res.Uncertainties ≈ [0.447, 0.837]
//
// Errors follow one taxonomy (lstsq.ErrDimension, lstsq.ErrConfiguration,
// lstsq.ErrNumerical); lower-level matrix sentinels stay reachable through
// errors.Is.
//
//	go get github.com/katalvlaran/lvfit
package lvfit
