// SPDX-License-Identifier: MIT
// Package matrix - linear-algebra kernels.
//
// Purpose:
//   - Provide the canonical kernels the solver composes: products, transposes,
//     diagonal scalings and Gram products.
//   - Every kernel validates through validators.go, allocates exactly one result
//     and never mutates its operands.
//
// Notes:
//   - *Dense operands are read through their flat buffers. Any other Matrix is
//     first lifted with Densify so the arithmetic lives in one loop nest only.
//   - Loop orders are fixed (i→k→j for products) for bit-reproducible results.

package matrix

import "math"

// ZeroSum is the initial value for dot-product accumulators.
const ZeroSum = 0.0

// Operation name constants for unified error wrapping.
const (
	opMul       = "Mul"
	opTranspose = "Transpose"
	opScale     = "Scale"
	opScaleRows = "ScaleRows"
	opScaleCols = "ScaleCols"
	opMatVec    = "MatVec"
	opGram      = "Gram"
	opDiag      = "Diag"
	opSqrtDiag  = "SqrtDiag"
)

// asDense returns m as *Dense without copying when possible.
// Non-Dense inputs are materialized with Densify; callers must treat the
// result as read-only in both cases.
func asDense(m Matrix) (*Dense, error) {
	if d, ok := m.(*Dense); ok {
		return d, nil
	}

	return Densify(m)
}

// Mul computes the matrix product C = A × B.
// Implementation:
//   - Stage 1: ValidateMulCompatible(a, b); allocate Dense(a.Rows, b.Cols).
//   - Stage 2: i→k→j loop over flat buffers, skipping zero A[i,k].
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (inner mismatch).
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	da, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	db, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	aRows, aCols, bCols := da.r, da.c, db.c
	res, err := NewDense(aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	var (
		i, k, j                            int
		av                                 float64
		rowOffsetA, rowOffsetB, rowOffsetR int
	)
	for i = 0; i < aRows; i++ {
		rowOffsetA = i * aCols
		rowOffsetR = i * bCols
		for k = 0; k < aCols; k++ {
			av = da.data[rowOffsetA+k]
			if av == 0 {
				continue // skip zero for performance
			}
			rowOffsetB = k * bCols
			for j = 0; j < bCols; j++ {
				res.data[rowOffsetR+j] += av * db.data[rowOffsetB+j]
			}
		}
	}

	return res, nil
}

// Transpose returns a new matrix with rows and columns swapped (mᵀ).
// Errors: ErrNilMatrix.
// Complexity: Time O(r*c), Space O(r*c).
func Transpose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	dm, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	rows, cols := dm.r, dm.c
	res, err := NewDense(cols, rows)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	// data[i*cols + j] → res.data[j*rows + i]
	var i, j, baseSrc int
	for i = 0; i < rows; i++ {
		baseSrc = i * cols
		for j = 0; j < cols; j++ {
			res.data[j*rows+i] = dm.data[baseSrc+j]
		}
	}

	return res, nil
}

// Scale returns a new matrix whose elements are alpha * m[i,j].
// Errors: ErrNilMatrix.
// Complexity: Time O(r*c), Space O(r*c).
func Scale(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	dm, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}

	res, err := NewDense(dm.r, dm.c)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	for idx, v := range dm.data {
		res.data[idx] = v * alpha
	}

	return res, nil
}

// ScaleRows returns diag(f) × m: row i is multiplied by f[i].
// The weighted solver uses it to divide a model matrix by per-point weights.
// Errors: ErrNilMatrix, ErrDimensionMismatch (len(f) != Rows).
// Complexity: Time O(r*c), Space O(r*c).
func ScaleRows(m Matrix, f []float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScaleRows, err)
	}
	if err := ValidateVecLen(f, m.Rows()); err != nil {
		return nil, matrixErrorf(opScaleRows, err)
	}
	dm, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opScaleRows, err)
	}

	res, err := NewDense(dm.r, dm.c)
	if err != nil {
		return nil, matrixErrorf(opScaleRows, err)
	}
	var i, j, base int
	var fi float64
	for i = 0; i < dm.r; i++ {
		base = i * dm.c
		fi = f[i]
		for j = 0; j < dm.c; j++ {
			res.data[base+j] = dm.data[base+j] * fi
		}
	}

	return res, nil
}

// ScaleCols returns m × diag(f): column j is multiplied by f[j].
// Errors: ErrNilMatrix, ErrDimensionMismatch (len(f) != Cols).
// Complexity: Time O(r*c), Space O(r*c).
func ScaleCols(m Matrix, f []float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScaleCols, err)
	}
	if err := ValidateVecLen(f, m.Cols()); err != nil {
		return nil, matrixErrorf(opScaleCols, err)
	}
	dm, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opScaleCols, err)
	}

	res, err := NewDense(dm.r, dm.c)
	if err != nil {
		return nil, matrixErrorf(opScaleCols, err)
	}
	var i, j, base int
	for i = 0; i < dm.r; i++ {
		base = i * dm.c
		for j = 0; j < dm.c; j++ {
			res.data[base+j] = dm.data[base+j] * f[j]
		}
	}

	return res, nil
}

// MatVec computes y = m · x.
// Errors: ErrNilMatrix, ErrDimensionMismatch (len(x) != Cols).
// Complexity: Time O(r*c), Space O(r).
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}

	y := make([]float64, d.r)
	var i, j, base int
	var acc float64
	for i = 0; i < d.r; i++ {
		acc = ZeroSum
		base = i * d.c
		for j = 0; j < d.c; j++ {
			acc += d.data[base+j] * x[j]
		}
		y[i] = acc
	}

	return y, nil
}

// Gram returns G = m · mᵀ (r×r, symmetric).
// Only the upper triangle is accumulated; the lower triangle is mirrored,
// so G is exactly symmetric regardless of rounding.
// Errors: ErrNilMatrix.
// Complexity: Time O(r*r*c), Space O(r*r).
func Gram(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opGram, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opGram, err)
	}

	r, c := d.r, d.c
	res, err := NewDense(r, r)
	if err != nil {
		return nil, matrixErrorf(opGram, err)
	}
	var i, j, k, baseI, baseJ int
	var acc float64
	for i = 0; i < r; i++ {
		baseI = i * c
		for j = i; j < r; j++ {
			baseJ = j * c
			acc = ZeroSum
			for k = 0; k < c; k++ {
				acc += d.data[baseI+k] * d.data[baseJ+k]
			}
			res.data[i*r+j] = acc
			res.data[j*r+i] = acc
		}
	}

	return res, nil
}

// Diag returns the main diagonal of a square matrix.
// Errors: ErrNilMatrix, ErrDimensionMismatch (non-square).
// Complexity: O(n).
func Diag(m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opDiag, err)
	}
	if m.Rows() != m.Cols() {
		return nil, matrixErrorf(opDiag, ErrDimensionMismatch)
	}
	n := m.Rows()
	out := make([]float64, n)
	var err error
	for i := 0; i < n; i++ {
		if out[i], err = m.At(i, i); err != nil {
			return nil, matrixErrorf(opDiag, err)
		}
	}

	return out, nil
}

// SqrtDiag returns sqrt(diag(m)) for a square matrix, the standard-deviation
// vector of a covariance matrix. Negative diagonal entries produced by
// rounding (|v| tiny) are clamped to zero before the square root.
// Errors: as Diag.
// Complexity: O(n).
func SqrtDiag(m Matrix) ([]float64, error) {
	d, err := Diag(m)
	if err != nil {
		return nil, matrixErrorf(opSqrtDiag, err)
	}
	for i, v := range d {
		if v < 0 {
			v = 0
		}
		d[i] = math.Sqrt(v)
	}

	return d, nil
}
