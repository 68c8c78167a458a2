// SPDX-License-Identifier: MIT

// Package jacobian builds model (design) matrices for black-box models.
//
// Build evaluates the derivative of a Model with respect to each parameter
// and stacks the results as the columns of an M×N matrix: by symmetric
// central differences by default, or through an analytic Derivative
// callback. The matrix feeds lstsq as A for one linearization step of an
// iterative fit; Step performs that step. The iteration loop itself belongs
// to the caller.
//
// The caller's parameter slice is never mutated. Every probe works on a
// private copy, so Build is deterministic for a deterministic Model and may
// probe parameters concurrently (WithWorkers).
//
// Errors reuse the lstsq taxonomy: lstsq.ErrConfiguration for invalid
// options or a nil model, lstsq.ErrDimension for empty inputs or a model
// returning the wrong number of values, lstsq.ErrNumerical for non-finite
// values. Errors returned by the Model or Derivative are wrapped and
// propagated unchanged in meaning.
package jacobian
