// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers.
//
// Purpose:
//   • Provide small, deterministic fixtures for kernels.
//   • Keep all data finite and well-formed to avoid numeric-policy interference.

package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvfit/matrix"
)

// hide wraps any Matrix to hide its concrete type from type assertions,
// forcing kernels through the generic (non-*Dense) path.
type hide struct{ matrix.Matrix }

// MustDense allocates an r×c *Dense or fails the test.
func MustDense(t *testing.T, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	require.NoError(t, err, "NewDense(%d,%d)", r, c)

	return m
}

// NewFilledDense builds an r×c *Dense from row-major values or fails the test.
func NewFilledDense(t *testing.T, r, c int, vals ...float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(r, c, vals)
	require.NoError(t, err, "NewDenseFrom(%d,%d)", r, c)

	return m
}

// MustAt reads m[i,j] or fails the test.
func MustAt(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err, "At(%d,%d)", i, j)

	return v
}

// RequireMatrixClose compares m against the row-major want within tol.
func RequireMatrixClose(t *testing.T, want [][]float64, m matrix.Matrix, tol float64) {
	t.Helper()
	require.Equal(t, len(want), m.Rows(), "rows")
	for i := range want {
		require.Equal(t, len(want[i]), m.Cols(), "cols of row %d", i)
		for j := range want[i] {
			got := MustAt(t, m, i, j)
			require.InDelta(t, want[i][j], got, tol, "element [%d,%d]", i, j)
		}
	}
}

// RequireOrthonormalCols checks QᵀQ ≈ I for the columns of q.
func RequireOrthonormalCols(t *testing.T, q matrix.Matrix, tol float64) {
	t.Helper()
	rows, cols := q.Rows(), q.Cols()
	for a := 0; a < cols; a++ {
		for b := 0; b < cols; b++ {
			dot := 0.0
			for i := 0; i < rows; i++ {
				dot += MustAt(t, q, i, a) * MustAt(t, q, i, b)
			}
			want := 0.0
			if a == b {
				want = 1.0
			}
			require.InDelta(t, want, dot, tol, "QᵀQ[%d,%d]", a, b)
		}
	}
}

// isFinite reports whether v is neither NaN nor ±Inf.
func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
