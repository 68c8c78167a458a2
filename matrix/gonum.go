// SPDX-License-Identifier: MIT
// Package matrix - bridge to gonum.
//
// Purpose:
//   - Convert between the package's Dense and gonum's *mat.Dense so the
//     decompositions gonum implements (SVD) can be reused without giving up
//     the Matrix interface at the public surface.
//   - Both directions copy; neither side ever aliases the other's buffer.

package matrix

import "gonum.org/v1/gonum/mat"

const (
	opToGonum   = "ToGonum"
	opFromGonum = "FromGonum"
)

// ToGonum copies m into a freshly allocated *mat.Dense.
// Errors: ErrNilMatrix, or the first At error for non-Dense inputs.
// Complexity: O(r*c).
func ToGonum(m Matrix) (*mat.Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opToGonum, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opToGonum, err)
	}
	buf := make([]float64, len(d.data))
	copy(buf, d.data)

	return mat.NewDense(d.r, d.c, buf), nil
}

// FromGonum copies a gonum matrix into a new *Dense with the default numeric policy.
// Errors: ErrNilMatrix (nil g), ErrInvalidDimensions (empty g).
// Complexity: O(r*c).
func FromGonum(g mat.Matrix) (*Dense, error) {
	if g == nil {
		return nil, matrixErrorf(opFromGonum, ErrNilMatrix)
	}
	r, c := g.Dims()
	res, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf(opFromGonum, err)
	}
	var i, j, base int
	for i = 0; i < r; i++ {
		base = i * c
		for j = 0; j < c; j++ {
			res.data[base+j] = g.At(i, j)
		}
	}

	return res, nil
}
