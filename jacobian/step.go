// SPDX-License-Identifier: MIT

package jacobian

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvfit/lstsq"
	"github.com/katalvlaran/lvfit/matrix"
)

const (
	opStep = "Step"

	msgObservationsLen = "%d observations for %d points"
	msgModelLen        = "model returned %d values for %d points"
)

// StepResult is one linearization step of an iterative fit.
type StepResult struct {
	// Residual is y − model(params, x).
	Residual []float64

	// ResidualSumSquares is Σ Residual².
	ResidualSumSquares float64

	// Jacobian is the model matrix at params.
	Jacobian *matrix.Dense

	// Delta solves Jacobian·Delta ≈ Residual in the least-squares sense.
	Delta []float64

	// Uncertainties of Delta, or nil when the solver was told to skip them.
	Uncertainties []float64

	// Rank is the number of singular values the solver retained.
	Rank int

	// Next is params + Delta.
	Next []float64
}

// Step performs one Gauss–Newton linearization at params: it evaluates the
// residual, builds the model matrix and solves for the parameter update
// with lstsq.SolveVector. Options given through WithSolverOptions (sigma,
// weighting, rcond) reach the solver unchanged.
func Step(model Model, params, x, y []float64, opts ...Option) (*StepResult, error) {
	o := gatherOptions(opts...)
	if o.err != nil {
		return nil, errorf(opStep, lstsq.ErrConfiguration, "%v", o.err)
	}
	if err := validateInputs(opStep, model, params, x); err != nil {
		return nil, err
	}
	if len(y) != len(x) {
		return nil, errorf(opStep, lstsq.ErrDimension, msgObservationsLen, len(y), len(x))
	}
	if err := matrix.ValidateFiniteVec(y); err != nil {
		return nil, fmt.Errorf("%s: %w: y: %w", opStep, lstsq.ErrNumerical, err)
	}

	fx, err := model(append([]float64(nil), params...), x)
	if err != nil {
		return nil, fmt.Errorf("%s: model: %w", opStep, err)
	}
	if len(fx) != len(x) {
		return nil, errorf(opStep, lstsq.ErrDimension, msgModelLen, len(fx), len(x))
	}
	if err = matrix.ValidateFiniteVec(fx); err != nil {
		return nil, fmt.Errorf("%s: %w: model: %w", opStep, lstsq.ErrNumerical, err)
	}
	residual := make([]float64, len(y))
	floats.SubTo(residual, y, fx)

	jac, err := build(&o, model, params, x)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opStep, err)
	}

	solverOpts := append([]lstsq.Option{lstsq.WithLogger(o.logger)}, o.solverOpts...)
	sol, err := lstsq.SolveVector(jac, residual, solverOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opStep, err)
	}

	next := make([]float64, len(params))
	floats.AddTo(next, params, sol.Parameters)

	res := &StepResult{
		Residual:           residual,
		ResidualSumSquares: floats.Dot(residual, residual),
		Jacobian:           jac,
		Delta:              sol.Parameters,
		Uncertainties:      sol.Uncertainties,
		Rank:               sol.Rank,
		Next:               next,
	}
	o.logger.Debug("jacobian: step",
		slog.Float64("rss", res.ResidualSumSquares),
		slog.Int("rank", res.Rank),
		slog.String("strategy", sol.Strategy.String()))

	return res, nil
}
