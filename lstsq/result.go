// SPDX-License-Identifier: MIT

package lstsq

import "github.com/katalvlaran/lvfit/matrix"

// Keys of the labeled (digested) output.
const (
	KeyParameters    = "parameters"
	KeyUncertainties = "uncertainties"
	KeyCovariances   = "covariances"
)

// Result is the outcome of Solve for an M×K observation matrix.
type Result struct {
	// Parameters is N×K; column k fits column k of b.
	Parameters *matrix.Dense

	// Uncertainties is N×K, or nil when not requested.
	Uncertainties *matrix.Dense

	// Covariances holds K matrices of N×N, or nil when not requested.
	Covariances []*matrix.Dense

	// Rank is the number of singular values retained for each column.
	Rank []int

	// Strategy is the weighting/output combination that produced the result.
	Strategy Strategy

	// Digested is true when the caller asked for the labeled form.
	Digested bool
}

// Outputs returns the positional form: [parameters], [parameters,
// uncertainties] or [parameters, uncertainties, covariances].
func (r *Result) Outputs() []any {
	out := []any{r.Parameters}
	if r.Uncertainties == nil {
		return out
	}
	out = append(out, r.Uncertainties)
	if r.Covariances != nil {
		out = append(out, r.Covariances)
	}

	return out
}

// Digest returns the labeled form. It always holds KeyParameters and at most
// one of KeyUncertainties / KeyCovariances; uncertainties win when both exist.
func (r *Result) Digest() map[string]any {
	return digest(r.Parameters, r.Uncertainties, r.Covariances, r.Uncertainties != nil, r.Covariances != nil)
}

// VectorResult is the outcome of SolveVector; shapes are squeezed to 1-D.
type VectorResult struct {
	// Parameters has length N.
	Parameters []float64

	// Uncertainties has length N, or is nil when not requested.
	Uncertainties []float64

	// Covariance is N×N, or nil when not requested.
	Covariance *matrix.Dense

	// Rank is the number of singular values retained.
	Rank int

	// Strategy is the weighting/output combination that produced the result.
	Strategy Strategy

	// Digested is true when the caller asked for the labeled form.
	Digested bool
}

// Outputs returns the positional form, mirroring Result.Outputs.
func (r *VectorResult) Outputs() []any {
	out := []any{r.Parameters}
	if r.Uncertainties == nil {
		return out
	}
	out = append(out, r.Uncertainties)
	if r.Covariance != nil {
		out = append(out, r.Covariance)
	}

	return out
}

// Digest returns the labeled form, mirroring Result.Digest.
func (r *VectorResult) Digest() map[string]any {
	return digest(r.Parameters, r.Uncertainties, r.Covariance, r.Uncertainties != nil, r.Covariance != nil)
}

func digest(params, unc, cov any, hasUnc, hasCov bool) map[string]any {
	out := map[string]any{KeyParameters: params}
	switch {
	case hasUnc:
		out[KeyUncertainties] = unc
	case hasCov:
		out[KeyCovariances] = cov
	}

	return out
}

// squeeze collapses a single-column Result to its 1-D form.
func (r *Result) squeeze() (*VectorResult, error) {
	params, err := r.Parameters.Col(0)
	if err != nil {
		return nil, wrapMatrixErr(opSolveVector, err)
	}
	v := &VectorResult{
		Parameters: params,
		Rank:       r.Rank[0],
		Strategy:   r.Strategy,
		Digested:   r.Digested,
	}
	if r.Uncertainties != nil {
		if v.Uncertainties, err = r.Uncertainties.Col(0); err != nil {
			return nil, wrapMatrixErr(opSolveVector, err)
		}
	}
	if r.Covariances != nil {
		v.Covariance = r.Covariances[0]
	}

	return v, nil
}
