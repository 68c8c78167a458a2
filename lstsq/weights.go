// SPDX-License-Identifier: MIT

package lstsq

import (
	"math"

	"github.com/katalvlaran/lvfit/matrix"
)

// MinWeightFloor replaces zero weights so that dividing by a weight is always
// defined. It is expressed in the units of the observations.
const MinWeightFloor = 1.0

const (
	opWeights     = "weights"
	msgSigmaShape = "sigma shape %dx%d not broadcastable to %dx%d"
	msgSigmaLen   = "sigma length %d not broadcastable to %dx%d"
)

// weightTable is an M×K row-major table of strictly positive weights.
type weightTable struct {
	rows, cols int
	data       []float64
}

// col returns a copy of column k.
func (t *weightTable) col(k int) []float64 {
	out := make([]float64, t.rows)
	for m := 0; m < t.rows; m++ {
		out[m] = t.data[m*t.cols+k]
	}

	return out
}

// floorWeight returns |v|, lifted to MinWeightFloor when it is zero.
func floorWeight(v float64) float64 {
	v = math.Abs(v)
	if v == 0 {
		return MinWeightFloor
	}

	return v
}

// sigmaWeights broadcasts the configured sigma to m×k and applies the floor.
// Accepted shapes: m×k, m×1, or an m-vector.
func sigmaWeights(o *Options, m, k int) (*weightTable, error) {
	t := &weightTable{rows: m, cols: k, data: make([]float64, m*k)}

	if o.sigmaVec != nil {
		if len(o.sigmaVec) != m {
			return nil, lstsqErrorf(opWeights, ErrDimension, msgSigmaLen, len(o.sigmaVec), m, k)
		}
		if err := matrix.ValidateFiniteVec(o.sigmaVec); err != nil {
			return nil, wrapMatrixErr(opWeights, err)
		}
		for i, v := range o.sigmaVec {
			w := floorWeight(v)
			for j := 0; j < k; j++ {
				t.data[i*k+j] = w
			}
		}

		return t, nil
	}

	rows, cols := o.sigma.Rows(), o.sigma.Cols()
	if rows != m || (cols != k && cols != 1) {
		return nil, lstsqErrorf(opWeights, ErrDimension, msgSigmaShape, rows, cols, m, k)
	}
	if err := matrix.ValidateFinite(o.sigma); err != nil {
		return nil, wrapMatrixErr(opWeights, err)
	}
	s, err := matrix.Densify(o.sigma)
	if err != nil {
		return nil, wrapMatrixErr(opWeights, err)
	}
	raw := s.RawValues()
	for i := 0; i < m; i++ {
		for j := 0; j < k; j++ {
			if cols == 1 {
				t.data[i*k+j] = floorWeight(raw[i])
			} else {
				t.data[i*k+j] = floorWeight(raw[i*k+j])
			}
		}
	}

	return t, nil
}

// statisticalWeights returns sqrt(|b|) with the floor applied.
func statisticalWeights(b *matrix.Dense) *weightTable {
	m, k := b.Shape()
	t := &weightTable{rows: m, cols: k, data: b.RawValues()}
	for i, v := range t.data {
		t.data[i] = floorWeight(math.Sqrt(math.Abs(v)))
	}

	return t
}
