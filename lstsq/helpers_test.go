// SPDX-License-Identifier: MIT
package lstsq_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvfit/matrix"
)

// lineFit is a straight-line data set: x, y and per-point sigma.
var lineFit = struct{ x, y, sigma []float64 }{
	x:     []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	y:     []float64{0.8214, 2.8471, 4.852, 7.5347, 10.2464, 10.2707, 12.8011, 13.7108, 17.8501, 15.3667, 19.3933},
	sigma: []float64{0.1, 0.3, 0.5, 0.7, 0.9, 1.1, 1.3, 1.5, 1.7, 1.9, 2.1},
}

// lineModel returns the M×2 model matrix [1, x].
func lineModel(t *testing.T, x []float64) *matrix.Dense {
	t.Helper()
	vals := make([]float64, 0, 2*len(x))
	for _, xi := range x {
		vals = append(vals, 1, xi)
	}

	return mustDense(t, len(x), 2, vals...)
}

// repeatColumns stacks k copies of v side by side (len(v)×k).
func repeatColumns(t *testing.T, v []float64, k int) *matrix.Dense {
	t.Helper()
	vals := make([]float64, 0, len(v)*k)
	for _, vi := range v {
		for j := 0; j < k; j++ {
			vals = append(vals, vi)
		}
	}

	return mustDense(t, len(v), k, vals...)
}

func mustDense(t *testing.T, r, c int, vals ...float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(r, c, vals)
	require.NoError(t, err)

	return m
}

func mustAt(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err)

	return v
}

// requireMatrixNear compares two matrices elementwise with a relative tolerance.
func requireMatrixNear(t *testing.T, want, got matrix.Matrix, rel float64) {
	t.Helper()
	require.Equal(t, want.Rows(), got.Rows(), "rows")
	require.Equal(t, want.Cols(), got.Cols(), "cols")
	for i := 0; i < want.Rows(); i++ {
		for j := 0; j < want.Cols(); j++ {
			w, g := mustAt(t, want, i, j), mustAt(t, got, i, j)
			require.InDelta(t, w, g, rel*math.Max(1, math.Abs(w)), "[%d,%d]", i, j)
		}
	}
}

func requireAllFinite(t *testing.T, m matrix.Matrix) {
	t.Helper()
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v := mustAt(t, m, i, j)
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "[%d,%d] = %v", i, j, v)
		}
	}
}

// poisoned reports NaN at (0,0); Dense rejects NaN so a custom Matrix is needed.
type poisoned struct{ *matrix.Dense }

func (p poisoned) At(i, j int) (float64, error) {
	if i == 0 && j == 0 {
		return math.NaN(), nil
	}

	return p.Dense.At(i, j)
}
