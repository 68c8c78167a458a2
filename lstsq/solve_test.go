// SPDX-License-Identifier: MIT
package lstsq_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/lvfit/lstsq"
	"github.com/katalvlaran/lvfit/matrix"
)

// recoveryA is a 6×3 full-rank model matrix.
var recoveryA = []float64{
	1, 0, 2,
	2, 1, 0,
	0, 3, 1,
	1, 1, 1,
	4, 0, 1,
	2, 2, 3,
}

// recoveryX holds two parameter columns.
var recoveryX = []float64{
	2, -1,
	0.5, 3,
	-4, 1,
}

func TestSolve_ExactRecovery(t *testing.T) {
	a := mustDense(t, 6, 3, recoveryA...)
	x := mustDense(t, 3, 2, recoveryX...)
	b, err := matrix.Mul(a, x)
	require.NoError(t, err)

	sigma := mustDense(t, 6, 2,
		0.1, 2,
		0.5, 1,
		1, 0.3,
		2, 0.7,
		0.2, 1.5,
		3, 0.9,
	)

	cases := []struct {
		name string
		opts []lstsq.Option
		want lstsq.Weighting
	}{
		{"unweighted", nil, lstsq.WeightingNone},
		{"propagated", []lstsq.Option{lstsq.WithSigma(sigma)}, lstsq.WeightingPropagated},
		{"uniform-weights", []lstsq.Option{lstsq.WithSigmaVector([]float64{1, 1, 1, 1, 1, 1}), lstsq.WithWeight(true)}, lstsq.WeightingExplicit},
		{"explicit", []lstsq.Option{lstsq.WithSigma(sigma), lstsq.WithWeight(true)}, lstsq.WeightingExplicit},
		{"statistical", []lstsq.Option{lstsq.WithStatisticalWeight()}, lstsq.WeightingStatistical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := lstsq.Solve(a, b, tc.opts...)
			require.NoError(t, err)
			require.Equal(t, tc.want, res.Strategy.Weighting)
			requireMatrixNear(t, x, res.Parameters, 1e-8)
			require.Equal(t, []int{3, 3}, res.Rank)
		})
	}
}

func TestSolve_ShapeInvariance(t *testing.T) {
	a := lineModel(t, lineFit.x)
	b := repeatColumns(t, lineFit.y, 3)

	res, err := lstsq.Solve(a, b, lstsq.WithCovariances())
	require.NoError(t, err)
	r, c := res.Parameters.Shape()
	require.Equal(t, [2]int{2, 3}, [2]int{r, c})
	r, c = res.Uncertainties.Shape()
	require.Equal(t, [2]int{2, 3}, [2]int{r, c})
	require.Len(t, res.Covariances, 3)
	for _, cov := range res.Covariances {
		r, c = cov.Shape()
		require.Equal(t, [2]int{2, 2}, [2]int{r, c})
	}

	vr, err := lstsq.SolveVector(a, lineFit.y, lstsq.WithCovariances())
	require.NoError(t, err)
	require.Len(t, vr.Parameters, 2)
	require.Len(t, vr.Uncertainties, 2)
	r, c = vr.Covariance.Shape()
	require.Equal(t, [2]int{2, 2}, [2]int{r, c})

	vr, err = lstsq.SolveVector(a, lineFit.y, lstsq.WithUncertainties(false))
	require.NoError(t, err)
	require.Nil(t, vr.Uncertainties)
	require.Nil(t, vr.Covariance)
}

func TestSolve_UniformWeightEquivalence(t *testing.T) {
	a := lineModel(t, lineFit.x)
	b := repeatColumns(t, lineFit.y, 2)
	ones := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}

	plain, err := lstsq.Solve(a, b)
	require.NoError(t, err)
	weighted, err := lstsq.Solve(a, b, lstsq.WithSigmaVector(ones), lstsq.WithWeight(true))
	require.NoError(t, err)
	propagated, err := lstsq.Solve(a, b, lstsq.WithSigmaVector(ones))
	require.NoError(t, err)

	requireMatrixNear(t, plain.Parameters, weighted.Parameters, 1e-10)
	requireMatrixNear(t, plain.Uncertainties, weighted.Uncertainties, 1e-10)
	requireMatrixNear(t, plain.Uncertainties, propagated.Uncertainties, 1e-10)
}

func TestSolve_ZeroSigmaUsesFloor(t *testing.T) {
	a := lineModel(t, lineFit.x)
	zeros := make([]float64, len(lineFit.x))
	ones := make([]float64, len(lineFit.x))
	for i := range ones {
		ones[i] = lstsq.MinWeightFloor
	}

	got, err := lstsq.SolveVector(a, lineFit.y, lstsq.WithSigmaVector(zeros), lstsq.WithWeight(true))
	require.NoError(t, err)
	want, err := lstsq.SolveVector(a, lineFit.y, lstsq.WithSigmaVector(ones), lstsq.WithWeight(true))
	require.NoError(t, err)
	require.InDeltaSlice(t, want.Parameters, got.Parameters, 1e-12)
	require.InDeltaSlice(t, want.Uncertainties, got.Uncertainties, 1e-12)
}

func TestSolve_RankTruncation(t *testing.T) {
	// second column is twice the first
	a := mustDense(t, 3, 2, 1, 2, 2, 4, 3, 6)
	b := []float64{3, 6, 9}

	res, err := lstsq.SolveVector(a, b, lstsq.WithRcond(1e-10), lstsq.WithCovariances())
	require.NoError(t, err)
	require.Equal(t, 1, res.Rank)

	// minimum-norm solution of x0 + 2·x1 = 3
	require.InDeltaSlice(t, []float64{0.6, 1.2}, res.Parameters, 1e-9)
	for _, u := range res.Uncertainties {
		require.Less(t, u, 1.0)
	}
	requireAllFinite(t, res.Covariance)

	// weighted path truncates per column as well
	wres, err := lstsq.SolveVector(a, b, lstsq.WithStatisticalWeight(), lstsq.WithRcond(1e-10))
	require.NoError(t, err)
	require.Equal(t, 1, wres.Rank)
	for _, p := range wres.Parameters {
		require.Less(t, p, 10.0)
	}
}

func TestSolve_ZeroMatrix(t *testing.T) {
	a := mustDense(t, 3, 2, 0, 0, 0, 0, 0, 0)
	res, err := lstsq.SolveVector(a, []float64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 0, res.Rank)
	require.Equal(t, []float64{0, 0}, res.Parameters)
	require.Equal(t, []float64{0, 0}, res.Uncertainties)
}

func TestSolve_CovarianceDiagonalMatchesUncertainty(t *testing.T) {
	a := lineModel(t, lineFit.x)
	const k = 3
	b := repeatColumns(t, lineFit.y, k)
	sig := make([]float64, 0, len(lineFit.sigma)*k)
	for _, s := range lineFit.sigma {
		sig = append(sig, s, 2*s, s+0.5)
	}
	sigma := mustDense(t, len(lineFit.sigma), k, sig...)

	for name, opts := range map[string][]lstsq.Option{
		"none":        nil,
		"propagated":  {lstsq.WithSigma(sigma)},
		"explicit":    {lstsq.WithSigma(sigma), lstsq.WithWeight(true)},
		"statistical": {lstsq.WithStatisticalWeight()},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := lstsq.Solve(a, b, append(opts, lstsq.WithCovariances())...)
			require.NoError(t, err)
			require.Equal(t, lstsq.OutputCovariance, res.Strategy.Output)
			require.Len(t, res.Covariances, k)
			for j, cov := range res.Covariances {
				diag, err := matrix.Diag(cov)
				require.NoError(t, err)
				for i, v := range diag {
					u := mustAt(t, res.Uncertainties, i, j)
					require.InEpsilon(t, u*u, v, 1e-12, "param %d column %d", i, j)
				}
			}
		})
	}
}

func TestSolve_PropagatedPathsAgree(t *testing.T) {
	a := lineModel(t, lineFit.x)
	b := repeatColumns(t, lineFit.y, 4)
	sig := make([]float64, 0, 4*len(lineFit.sigma))
	for _, s := range lineFit.sigma {
		sig = append(sig, s, 0.5*s, 1, 0)
	}
	sigma := mustDense(t, len(lineFit.sigma), 4, sig...)

	rowLoop, err := lstsq.Solve(a, b, lstsq.WithSigma(sigma))
	require.NoError(t, err)
	perColumn, err := lstsq.Solve(a, b, lstsq.WithSigma(sigma), lstsq.WithCovariances())
	require.NoError(t, err)
	requireMatrixNear(t, rowLoop.Uncertainties, perColumn.Uncertainties, 1e-12)
}

func TestSolve_EndToEnd(t *testing.T) {
	a := mustDense(t, 4, 2, 0, 1, 1, 1, 2, 1, 3, 1)
	res, err := lstsq.SolveVector(a, []float64{-1, 0.2, 0.9, 2.1})
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1.0, -0.95}, res.Parameters, 1e-2)
}

func TestSolve_InputsNotMutated(t *testing.T) {
	a := lineModel(t, lineFit.x)
	b := repeatColumns(t, lineFit.y, 2)
	aBefore, bBefore := a.RawValues(), b.RawValues()

	_, err := lstsq.Solve(a, b, lstsq.WithStatisticalWeight(), lstsq.WithCovariances())
	require.NoError(t, err)
	require.Equal(t, aBefore, a.RawValues())
	require.Equal(t, bBefore, b.RawValues())
}

func TestSolve_WorkersDeterministic(t *testing.T) {
	a := lineModel(t, lineFit.x)
	const k = 40
	yv := make([]float64, 0, len(lineFit.y)*k)
	sv := make([]float64, 0, len(lineFit.y)*k)
	for i, y := range lineFit.y {
		for j := 0; j < k; j++ {
			yv = append(yv, y+0.01*float64(j))
			sv = append(sv, lineFit.sigma[i]*(1+0.1*float64(j)))
		}
	}
	b := mustDense(t, len(lineFit.y), k, yv...)
	sigma := mustDense(t, len(lineFit.y), k, sv...)

	for name, opts := range map[string][]lstsq.Option{
		"explicit":   {lstsq.WithSigma(sigma), lstsq.WithWeight(true), lstsq.WithCovariances()},
		"propagated": {lstsq.WithSigma(sigma), lstsq.WithCovariances()},
	} {
		t.Run(name, func(t *testing.T) {
			seq, err := lstsq.Solve(a, b, append(opts, lstsq.WithWorkers(1))...)
			require.NoError(t, err)
			par, err := lstsq.Solve(a, b, append(opts, lstsq.WithWorkers(6))...)
			require.NoError(t, err)

			require.Equal(t, seq.Parameters.RawValues(), par.Parameters.RawValues())
			require.Equal(t, seq.Uncertainties.RawValues(), par.Uncertainties.RawValues())
			for j := range seq.Covariances {
				require.Equal(t, seq.Covariances[j].RawValues(), par.Covariances[j].RawValues())
			}
		})
	}
}

func TestSolve_StrategySelection(t *testing.T) {
	a := lineModel(t, lineFit.x)
	sig := lstsq.WithSigmaVector(lineFit.sigma)

	cases := []struct {
		name string
		opts []lstsq.Option
		want lstsq.Strategy
	}{
		{"default", nil, lstsq.Strategy{Weighting: lstsq.WeightingNone, Output: lstsq.OutputUncertainty}},
		{"params-only", []lstsq.Option{lstsq.WithUncertainties(false)}, lstsq.Strategy{Weighting: lstsq.WeightingNone, Output: lstsq.OutputParameters}},
		{"covariances-force-uncertainties", []lstsq.Option{lstsq.WithCovariances(), lstsq.WithUncertainties(false)}, lstsq.Strategy{Weighting: lstsq.WeightingNone, Output: lstsq.OutputCovariance}},
		{"sigma-propagated", []lstsq.Option{sig}, lstsq.Strategy{Weighting: lstsq.WeightingPropagated, Output: lstsq.OutputUncertainty}},
		{"sigma-wins-over-statistical", []lstsq.Option{sig, lstsq.WithStatisticalWeight()}, lstsq.Strategy{Weighting: lstsq.WeightingExplicit, Output: lstsq.OutputUncertainty}},
		{"statistical-params-only", []lstsq.Option{lstsq.WithStatisticalWeight(), lstsq.WithUncertainties(false)}, lstsq.Strategy{Weighting: lstsq.WeightingStatistical, Output: lstsq.OutputParameters}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := lstsq.SolveVector(a, lineFit.y, tc.opts...)
			require.NoError(t, err)
			require.Equal(t, tc.want, res.Strategy)
			require.Len(t, res.Outputs(), int(tc.want.Output)+1)
		})
	}
	require.Equal(t, "explicit/covariance", lstsq.Strategy{Weighting: lstsq.WeightingExplicit, Output: lstsq.OutputCovariance}.String())
}

func TestSolve_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a := mustDense(t, 3, 2, 1, 2, 2, 4, 3, 6)
	_, err := lstsq.SolveVector(a, []float64{3, 6, 9}, lstsq.WithRcond(1e-10), lstsq.WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "strategy selected")
	require.Contains(t, out, "strategy=none/uncertainty")
	require.Contains(t, out, "singular values truncated")
}

// LineFitSuite pins the straight-line data set against reference values.
type LineFitSuite struct {
	suite.Suite
	a *matrix.Dense
	b *matrix.Dense
}

const lineFitColumns = 5

func (s *LineFitSuite) SetupTest() {
	s.a = lineModel(s.T(), lineFit.x)
	s.b = repeatColumns(s.T(), lineFit.y, lineFitColumns)
}

// check asserts every column carries the same parameters and uncertainties.
func (s *LineFitSuite) check(res *lstsq.Result, params, unc []float64) {
	for j := 0; j < lineFitColumns; j++ {
		for i := range params {
			s.InDelta(params[i], mustAt(s.T(), res.Parameters, i, j), 1e-5, "param %d column %d", i, j)
			s.InDelta(unc[i], mustAt(s.T(), res.Uncertainties, i, j), 1e-5, "uncertainty %d column %d", i, j)
		}
	}
}

func (s *LineFitSuite) TestUnweighted() {
	res, err := lstsq.Solve(s.a, s.b)
	s.Require().NoError(err)
	s.check(res, []float64{1.570432, 1.789446}, []float64{0.564076, 0.095346})
}

func (s *LineFitSuite) TestPropagatedSigma() {
	sigma := mustDense(s.T(), len(lineFit.sigma), 1, lineFit.sigma...)
	res, err := lstsq.Solve(s.a, s.b, lstsq.WithSigma(sigma))
	s.Require().NoError(err)
	s.check(res, []float64{1.570432, 1.789446}, []float64{0.427997, 0.132184})
}

func (s *LineFitSuite) TestWeightedSigma() {
	sigma := repeatColumns(s.T(), lineFit.sigma, lineFitColumns)
	res, err := lstsq.Solve(s.a, s.b, lstsq.WithSigma(sigma), lstsq.WithWeight(true))
	s.Require().NoError(err)
	s.check(res, []float64{0.843827, 1.979823}, []float64{0.095732, 0.075205})
}

func (s *LineFitSuite) TestStatisticalWeights() {
	res, err := lstsq.Solve(s.a, s.b, lstsq.WithStatisticalWeight(), lstsq.WithWorkers(3))
	s.Require().NoError(err)
	s.check(res, []float64{0.980127, 1.887674}, []float64{0.779282, 0.234624})
}

func TestLineFitSuite(t *testing.T) {
	suite.Run(t, new(LineFitSuite))
}
