// SPDX-License-Identifier: MIT

package lstsq

import (
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvfit/matrix"
)

const (
	opSolve       = "Solve"
	opSolveVector = "SolveVector"

	msgRowsMismatch = "incompatible dimensions between A (%dx%d) and b (%dx%d)"
)

// solver carries the validated inputs of one call. Nothing in it outlives the call.
type solver struct {
	opts     *Options
	strategy Strategy
	a, b     *matrix.Dense
	m, n, k  int
	log      *slog.Logger
}

// Solve computes the least-squares solution of A·x = b for every column of b.
// Implementation:
//   - Stage 1: resolve options; invalid values fail with ErrConfiguration.
//   - Stage 2: validate shapes (ErrDimension) and finiteness (ErrNumerical).
//   - Stage 3: select one Strategy and dispatch to its code path:
//     shared decomposition for unweighted fits, per-column decomposition for
//     weighted fits.
//
// A and b are never mutated. No partial result is returned on error.
//
// Complexity:
//   - Unweighted: one SVD O(M·N·min(M,N)) plus O(N·M·K) for the products.
//   - Weighted: K SVDs.
//   - Covariances: O(K·N²) extra memory.
func Solve(a, b matrix.Matrix, opts ...Option) (*Result, error) {
	o := gatherOptions(opts...)
	if o.err != nil {
		return nil, lstsqErrorf(opSolve, ErrConfiguration, "%v", o.err)
	}

	s, err := newSolver(&o, a, b)
	if err != nil {
		return nil, err
	}
	s.log.Debug("lstsq: strategy selected",
		slog.String("strategy", s.strategy.String()),
		slog.Int("m", s.m), slog.Int("n", s.n), slog.Int("k", s.k),
		slog.Int("workers", o.workers))

	var res *Result
	switch s.strategy.Weighting {
	case WeightingNone:
		res, err = s.solveShared(nil)
	case WeightingPropagated:
		var w *weightTable
		if w, err = sigmaWeights(s.opts, s.m, s.k); err != nil {
			return nil, wrapMatrixErr(opSolve, err)
		}
		res, err = s.solveShared(w)
	case WeightingExplicit:
		var w *weightTable
		if w, err = sigmaWeights(s.opts, s.m, s.k); err != nil {
			return nil, wrapMatrixErr(opSolve, err)
		}
		res, err = s.solvePerColumn(w)
	case WeightingStatistical:
		res, err = s.solvePerColumn(statisticalWeights(s.b))
	}
	if err != nil {
		return nil, wrapMatrixErr(opSolve, err)
	}
	res.Strategy = s.strategy
	res.Digested = o.digestedOutput

	return res, nil
}

// SolveVector solves A·x = b for a single right-hand side and returns
// 1-D outputs. Options are those of Solve; sigma may be an M-vector
// (WithSigmaVector) or an M×1 matrix.
func SolveVector(a matrix.Matrix, b []float64, opts ...Option) (*VectorResult, error) {
	if b == nil {
		return nil, wrapMatrixErr(opSolveVector, matrix.ErrNilMatrix)
	}
	col, err := matrix.NewColumn(b)
	if err != nil {
		return nil, wrapMatrixErr(opSolveVector, err)
	}
	res, err := Solve(a, col, opts...)
	if err != nil {
		return nil, wrapMatrixErr(opSolveVector, err)
	}

	return res.squeeze()
}

// newSolver validates and copies the operands.
func newSolver(o *Options, a, b matrix.Matrix) (*solver, error) {
	if err := matrix.ValidateNotNil(a); err != nil {
		return nil, wrapMatrixErr(opSolve, err)
	}
	if err := matrix.ValidateNotNil(b); err != nil {
		return nil, wrapMatrixErr(opSolve, err)
	}
	if a.Rows() != b.Rows() {
		return nil, lstsqErrorf(opSolve, ErrDimension, msgRowsMismatch, a.Rows(), a.Cols(), b.Rows(), b.Cols())
	}
	if err := matrix.ValidateFinite(a); err != nil {
		return nil, wrapMatrixErr(opSolve, err)
	}
	if err := matrix.ValidateFinite(b); err != nil {
		return nil, wrapMatrixErr(opSolve, err)
	}
	ad, err := matrix.Densify(a)
	if err != nil {
		return nil, wrapMatrixErr(opSolve, err)
	}
	bd, err := matrix.Densify(b)
	if err != nil {
		return nil, wrapMatrixErr(opSolve, err)
	}

	return &solver{
		opts:     o,
		strategy: selectStrategy(o),
		a:        ad,
		b:        bd,
		m:        ad.Rows(),
		n:        ad.Cols(),
		k:        bd.Cols(),
		log:      o.logger,
	}, nil
}

// forEachColumn runs fn for columns 0..k-1 with at most workers in flight.
// fn must write only to slots owned by its column.
func (s *solver) forEachColumn(fn func(k int) error) error {
	var g errgroup.Group
	g.SetLimit(s.opts.workers)
	for k := 0; k < s.k; k++ {
		g.Go(func() error { return fn(k) })
	}

	return g.Wait()
}

// logTruncation reports columns whose decomposition dropped directions.
// col < 0 marks the decomposition shared by all columns.
func (s *solver) logTruncation(col int, p *pseudoInverse) {
	if p.rank < min(s.m, s.n) {
		s.log.Debug("lstsq: singular values truncated",
			slog.Int("column", col),
			slog.Int("rank", p.rank),
			slog.Int("kept_of", min(s.m, s.n)),
			slog.Float64("cutoff", p.cutoff))
	}
}

// solveShared handles WeightingNone (w == nil) and WeightingPropagated.
// One SVD serves every column.
func (s *solver) solveShared(w *weightTable) (*Result, error) {
	p, err := decompose(s.a, s.opts.rcondFor(s.n))
	if err != nil {
		return nil, err
	}
	s.logTruncation(-1, p)

	params, err := p.apply(s.b)
	if err != nil {
		return nil, err
	}
	res := &Result{Parameters: params, Rank: make([]int, s.k)}
	for k := range res.Rank {
		res.Rank[k] = p.rank
	}

	switch {
	case s.strategy.Output == OutputParameters:
		return res, nil
	case w == nil:
		err = s.uniformUncertainty(p, res)
	case s.strategy.Output == OutputCovariance:
		err = s.propagatedCovariance(p, w, res)
	default:
		err = s.propagatedUncertainty(p, w, res)
	}
	if err != nil {
		return nil, err
	}

	return res, nil
}

// uniformUncertainty computes dummy·dummyᵀ once and broadcasts it to every
// column; with unit weights the covariance does not depend on the data.
func (s *solver) uniformUncertainty(p *pseudoInverse, res *Result) error {
	cov, err := p.covariance()
	if err != nil {
		return err
	}
	sd, err := matrix.SqrtDiag(cov)
	if err != nil {
		return wrapMatrixErr(opSolve, err)
	}

	unc, err := matrix.NewDense(s.n, s.k)
	if err != nil {
		return wrapMatrixErr(opSolve, err)
	}
	for i, v := range sd {
		for k := 0; k < s.k; k++ {
			if err = unc.Set(i, k, v); err != nil {
				return wrapMatrixErr(opSolve, err)
			}
		}
	}
	res.Uncertainties = unc

	if s.strategy.Output == OutputCovariance {
		res.Covariances = make([]*matrix.Dense, s.k)
		for k := range res.Covariances {
			res.Covariances[k] = cov.Clone().(*matrix.Dense)
		}
	}

	return nil
}

// propagatedCovariance computes cov_k = P·diag(w_k²)·Pᵀ for every column.
func (s *solver) propagatedCovariance(p *pseudoInverse, w *weightTable, res *Result) error {
	proj, err := p.projector()
	if err != nil {
		return err
	}

	covs := make([]*matrix.Dense, s.k)
	uncCols := make([][]float64, s.k)
	err = s.forEachColumn(func(k int) error {
		pw, err := matrix.ScaleCols(proj, w.col(k))
		if err != nil {
			return wrapMatrixErr(opSolve, err)
		}
		if covs[k], err = matrix.Gram(pw); err != nil {
			return wrapMatrixErr(opSolve, err)
		}
		if uncCols[k], err = matrix.SqrtDiag(covs[k]); err != nil {
			return wrapMatrixErr(opSolve, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if res.Uncertainties, err = assembleColumns(s.n, uncCols); err != nil {
		return err
	}
	res.Covariances = covs

	return nil
}

// propagatedUncertainty accumulates Σ_m (P[i,m]·w[m,k])² row by row, never
// materializing an M×M weight matrix.
func (s *solver) propagatedUncertainty(p *pseudoInverse, w *weightTable, res *Result) error {
	proj, err := p.projector()
	if err != nil {
		return err
	}
	pr := proj.RawValues()
	variance := make([]float64, s.n*s.k)

	var i, m, k, wBase, vBase int
	var pim, t float64
	for m = 0; m < s.m; m++ {
		wBase = m * s.k
		for i = 0; i < s.n; i++ {
			pim = pr[i*s.m+m]
			if pim == 0 {
				continue
			}
			vBase = i * s.k
			for k = 0; k < s.k; k++ {
				t = pim * w.data[wBase+k]
				variance[vBase+k] += t * t
			}
		}
	}
	for idx, v := range variance {
		variance[idx] = math.Sqrt(v)
	}

	unc, err := matrix.NewDenseFrom(s.n, s.k, variance)
	if err != nil {
		return wrapMatrixErr(opSolve, err)
	}
	res.Uncertainties = unc

	return nil
}

// solvePerColumn handles WeightingExplicit and WeightingStatistical: each
// column rescales A and b by 1/w, is decomposed on its own and fills only
// its own output slots.
func (s *solver) solvePerColumn(w *weightTable) (*Result, error) {
	paramCols := make([][]float64, s.k)
	uncCols := make([][]float64, s.k)
	covs := make([]*matrix.Dense, s.k)
	rank := make([]int, s.k)
	rcond := s.opts.rcondFor(s.n)
	out := s.strategy.Output

	err := s.forEachColumn(func(k int) error {
		wk := w.col(k)
		inv := make([]float64, s.m)
		for i, v := range wk {
			inv[i] = 1 / v
		}

		ak, err := matrix.ScaleRows(s.a, inv)
		if err != nil {
			return wrapMatrixErr(opSolve, err)
		}
		bk, err := s.b.Col(k)
		if err != nil {
			return wrapMatrixErr(opSolve, err)
		}
		for i := range bk {
			bk[i] *= inv[i]
		}

		p, err := decompose(ak, rcond)
		if err != nil {
			s.log.Debug("lstsq: column failed", slog.Int("column", k), slog.Any("error", err))
			return err
		}
		s.logTruncation(k, p)
		rank[k] = p.rank

		if paramCols[k], err = p.applyVec(bk); err != nil {
			return err
		}
		if out == OutputParameters {
			return nil
		}

		cov, err := p.covariance()
		if err != nil {
			return err
		}
		if uncCols[k], err = matrix.SqrtDiag(cov); err != nil {
			return wrapMatrixErr(opSolve, err)
		}
		if out == OutputCovariance {
			covs[k] = cov
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Rank: rank}
	if res.Parameters, err = assembleColumns(s.n, paramCols); err != nil {
		return nil, err
	}
	if out == OutputParameters {
		return res, nil
	}
	if res.Uncertainties, err = assembleColumns(s.n, uncCols); err != nil {
		return nil, err
	}
	if out == OutputCovariance {
		res.Covariances = covs
	}

	return res, nil
}

// assembleColumns stacks per-column vectors of length n into an n×len(cols) matrix.
func assembleColumns(n int, cols [][]float64) (*matrix.Dense, error) {
	d, err := matrix.NewDense(n, len(cols))
	if err != nil {
		return nil, wrapMatrixErr(opSolve, err)
	}
	for k, c := range cols {
		if err = d.SetCol(k, c); err != nil {
			return nil, wrapMatrixErr(opSolve, err)
		}
	}

	return d, nil
}
