// SPDX-License-Identifier: MIT

package jacobian

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvfit/lstsq"
	"github.com/katalvlaran/lvfit/matrix"
)

// Model evaluates a model at every point of x for the given parameters.
// It must return len(x) values and must not retain or modify params.
type Model func(params, x []float64) ([]float64, error)

// Derivative returns ∂model/∂params[index] at every point of x.
type Derivative func(params []float64, index int, x []float64) ([]float64, error)

const (
	opBuild = "Build"

	msgModelNil    = "model is nil"
	msgEmptyParams = "no parameters"
	msgEmptyX      = "no evaluation points"
	msgOutputLen   = "parameter %d: callback returned %d values for %d points"
	msgNonFinite   = "parameter %d: point %d: non-finite value %v"
)

// errorf builds an lstsq taxonomy error tagged with op.
func errorf(op string, kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, kind, fmt.Sprintf(format, args...))
}

// validateInputs checks the operands shared by Build and Step.
func validateInputs(op string, model Model, params, x []float64) error {
	if model == nil {
		return errorf(op, lstsq.ErrConfiguration, msgModelNil)
	}
	if len(params) == 0 {
		return errorf(op, lstsq.ErrDimension, msgEmptyParams)
	}
	if len(x) == 0 {
		return errorf(op, lstsq.ErrDimension, msgEmptyX)
	}
	if err := matrix.ValidateFiniteVec(params); err != nil {
		return fmt.Errorf("%s: %w: params: %w", op, lstsq.ErrNumerical, err)
	}
	if err := matrix.ValidateFiniteVec(x); err != nil {
		return fmt.Errorf("%s: %w: x: %w", op, lstsq.ErrNumerical, err)
	}

	return nil
}

// checkOutput enforces the length and finiteness of one callback result.
func checkOutput(op string, index int, values []float64, m int) error {
	if len(values) != m {
		return errorf(op, lstsq.ErrDimension, msgOutputLen, index, len(values), m)
	}
	for j, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errorf(op, lstsq.ErrNumerical, msgNonFinite, index, j, v)
		}
	}

	return nil
}

// Build returns the M×N model matrix J with J[:, i] = ∂model/∂params[i]
// evaluated at (params, x), where M = len(x) and N = len(params).
// Implementation:
//   - Stage 1: resolve options and validate inputs.
//   - Stage 2: for each parameter, call the Derivative or take the central
//     difference (f(p+δᵢ) − f(p−δᵢ)) / 2δᵢ with δᵢ = max(|pᵢ|, 1)·step.
//   - Stage 3: stack the columns.
//
// params is never mutated; each probe perturbs a private copy and restores it.
//
// Complexity:
//   - 2N model evaluations (or N derivative calls), O(M·N) memory.
func Build(model Model, params, x []float64, opts ...Option) (*matrix.Dense, error) {
	o := gatherOptions(opts...)
	if o.err != nil {
		return nil, errorf(opBuild, lstsq.ErrConfiguration, "%v", o.err)
	}
	if err := validateInputs(opBuild, model, params, x); err != nil {
		return nil, err
	}

	return build(&o, model, params, x)
}

// build assumes validated options and inputs.
func build(o *Options, model Model, params, x []float64) (*matrix.Dense, error) {
	m, n := len(x), len(params)
	cols := make([][]float64, n)

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			work := append([]float64(nil), params...)
			var err error
			if o.derivative != nil {
				cols[i], err = analyticColumn(o.derivative, work, i, x)
			} else {
				cols[i], err = centralColumn(model, work, i, x, o.step)
			}

			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	j, err := matrix.NewDense(m, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", opBuild, lstsq.ErrDimension, err)
	}
	for i, c := range cols {
		if err = j.SetCol(i, c); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", opBuild, lstsq.ErrNumerical, err)
		}
	}
	o.logger.Debug("jacobian: built",
		slog.Int("m", m), slog.Int("n", n),
		slog.Bool("analytic", o.derivative != nil))

	return j, nil
}

// analyticColumn evaluates the derivative callback for parameter i.
func analyticColumn(df Derivative, work []float64, i int, x []float64) ([]float64, error) {
	d, err := df(work, i, x)
	if err != nil {
		return nil, wrapCallback(i, err)
	}
	if err = checkOutput(opBuild, i, d, len(x)); err != nil {
		return nil, err
	}

	return append([]float64(nil), d...), nil
}

// centralColumn perturbs work[i] by ±δ, evaluates the model twice and
// restores work[i] before returning.
func centralColumn(model Model, work []float64, i int, x []float64, step float64) ([]float64, error) {
	p := work[i]
	delta := math.Max(math.Abs(p), 1) * step
	defer func() { work[i] = p }()

	work[i] = p + delta
	fp, err := model(work, x)
	if err != nil {
		return nil, wrapCallback(i, err)
	}
	if err = checkOutput(opBuild, i, fp, len(x)); err != nil {
		return nil, err
	}

	work[i] = p - delta
	fm, err := model(work, x)
	if err != nil {
		return nil, wrapCallback(i, err)
	}
	if err = checkOutput(opBuild, i, fm, len(x)); err != nil {
		return nil, err
	}

	col := make([]float64, len(x))
	den := 2 * delta
	for j := range col {
		col[j] = (fp[j] - fm[j]) / den
	}

	return col, nil
}

// wrapCallback tags a model or derivative error with the parameter index.
// Taxonomy errors raised by nested solver calls pass through unchanged in kind.
func wrapCallback(i int, err error) error {
	if errors.Is(err, lstsq.ErrDimension) || errors.Is(err, lstsq.ErrNumerical) || errors.Is(err, lstsq.ErrConfiguration) {
		return fmt.Errorf("%s: parameter %d: %w", opBuild, i, err)
	}

	return fmt.Errorf("%s: parameter %d: model: %w", opBuild, i, err)
}
