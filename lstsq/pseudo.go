// SPDX-License-Identifier: MIT

package lstsq

import (
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvfit/matrix"
)

const opDecompose = "decompose"

// pseudoInverse holds the truncated pseudo-inverse action of one model matrix.
//   - dummy = V·diag(1/s) with truncated directions zeroed (N×k).
//   - ut = Uᵀ (k×M).
//
// Then A⁺ = dummy·ut and the unweighted covariance is dummy·dummyᵀ.
type pseudoInverse struct {
	dummy  *matrix.Dense
	ut     *matrix.Dense
	rank   int
	cutoff float64
}

// decompose factors a by thin SVD and applies the relative cutoff
// rcond·s_max. Singular values below the cutoff, and exact zeros,
// contribute zero.
func decompose(a matrix.Matrix, rcond float64) (*pseudoInverse, error) {
	f, err := matrix.SVD(a)
	if err != nil {
		return nil, wrapMatrixErr(opDecompose, err)
	}

	cutoff := rcond * floats.Max(f.S)
	inv := make([]float64, len(f.S))
	rank := 0
	for i, s := range f.S {
		if s == 0 || s < cutoff {
			continue
		}
		inv[i] = 1 / s
		rank++
	}

	dummy, err := matrix.ScaleCols(f.V, inv)
	if err != nil {
		return nil, wrapMatrixErr(opDecompose, err)
	}
	ut, err := matrix.Transpose(f.U)
	if err != nil {
		return nil, wrapMatrixErr(opDecompose, err)
	}

	return &pseudoInverse{dummy: dummy, ut: ut, rank: rank, cutoff: cutoff}, nil
}

// apply returns dummy·(Uᵀ·b) for every column of b.
func (p *pseudoInverse) apply(b matrix.Matrix) (*matrix.Dense, error) {
	utb, err := matrix.Mul(p.ut, b)
	if err != nil {
		return nil, wrapMatrixErr(opDecompose, err)
	}
	x, err := matrix.Mul(p.dummy, utb)
	if err != nil {
		return nil, wrapMatrixErr(opDecompose, err)
	}

	return x, nil
}

// applyVec returns dummy·(Uᵀ·b) for a single right-hand side.
func (p *pseudoInverse) applyVec(b []float64) ([]float64, error) {
	utb, err := matrix.MatVec(p.ut, b)
	if err != nil {
		return nil, wrapMatrixErr(opDecompose, err)
	}
	x, err := matrix.MatVec(p.dummy, utb)
	if err != nil {
		return nil, wrapMatrixErr(opDecompose, err)
	}

	return x, nil
}

// covariance returns dummy·dummyᵀ (N×N).
func (p *pseudoInverse) covariance() (*matrix.Dense, error) {
	c, err := matrix.Gram(p.dummy)
	if err != nil {
		return nil, wrapMatrixErr(opDecompose, err)
	}

	return c, nil
}

// projector returns P = dummy·Uᵀ (N×M), the pseudo-inverse of A.
func (p *pseudoInverse) projector() (*matrix.Dense, error) {
	pm, err := matrix.Mul(p.dummy, p.ut)
	if err != nil {
		return nil, wrapMatrixErr(opDecompose, err)
	}

	return pm, nil
}
