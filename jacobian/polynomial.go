// SPDX-License-Identifier: MIT

package jacobian

import "github.com/katalvlaran/lvfit/lstsq"

// Polynomial is the Model y = Σ params[i]·xⁱ, evaluated by Horner's rule.
// It is linear in its parameters, so its model matrix has columns xⁱ.
func Polynomial(params, x []float64) ([]float64, error) {
	if len(params) == 0 {
		return nil, errorf("Polynomial", lstsq.ErrDimension, msgEmptyParams)
	}
	y := make([]float64, len(x))
	last := len(params) - 1
	for j, xj := range x {
		acc := params[last]
		for i := last - 1; i >= 0; i-- {
			acc = acc*xj + params[i]
		}
		y[j] = acc
	}

	return y, nil
}

var _ Model = Polynomial
