// SPDX-License-Identifier: MIT
// Package matrix - thin singular value decomposition.
//
// Purpose:
//   - Factor A (m×n) as U·diag(s)·Vᵀ in reduced ("thin") form, with
//     k = min(m, n) singular values sorted in non-increasing order.
//   - Delegate the numerics to gonum's LAPACK-derived mat.SVD (Golub–Kahan
//     bidiagonalization with implicit QR), which is backward stable for any
//     shape and rank.

package matrix

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

const opSVD = "SVD"

// ErrSVDFailed indicates that the singular value decomposition did not converge.
var ErrSVDFailed = errors.New("matrix: singular value decomposition failed")

// SVDFactors holds a thin decomposition A = U·diag(S)·Vᵀ.
//   - U: m×k with orthonormal columns.
//   - S: k singular values, S[0] ≥ S[1] ≥ ... ≥ 0.
//   - V: n×k with orthonormal columns.
type SVDFactors struct {
	U *Dense
	S []float64
	V *Dense
}

// Rank returns the number of singular values strictly above cutoff.
// Complexity: O(k).
func (f *SVDFactors) Rank(cutoff float64) int {
	r := 0
	for _, s := range f.S {
		if s > cutoff {
			r++
		}
	}

	return r
}

// SVD computes the thin singular value decomposition of m.
// Implementation:
//   - Stage 1: ValidateFinite(m) (LAPACK does not tolerate NaN/Inf).
//   - Stage 2: copy into gonum and factorize with mat.SVDThin.
//   - Stage 3: copy U, V and the singular values back into package types.
//
// Errors:
//   - ErrNilMatrix, ErrNaNInf (input), ErrSVDFailed (no convergence).
//
// Complexity:
//   - Time O(m*n*min(m,n)), Space O(m*n).
func SVD(m Matrix) (*SVDFactors, error) {
	if err := ValidateFinite(m); err != nil {
		return nil, matrixErrorf(opSVD, err)
	}
	g, err := ToGonum(m)
	if err != nil {
		return nil, matrixErrorf(opSVD, err)
	}

	var svd mat.SVD
	if ok := svd.Factorize(g, mat.SVDThin); !ok {
		return nil, matrixErrorf(opSVD, ErrSVDFailed)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	uu, err := FromGonum(&u)
	if err != nil {
		return nil, matrixErrorf(opSVD, err)
	}
	vv, err := FromGonum(&v)
	if err != nil {
		return nil, matrixErrorf(opSVD, err)
	}

	return &SVDFactors{U: uu, S: svd.Values(nil), V: vv}, nil
}
