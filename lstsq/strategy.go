// SPDX-License-Identifier: MIT

package lstsq

// Weighting names the weight source of a solve.
type Weighting int

const (
	// WeightingNone fits unweighted with no sigma; weights are 1 everywhere.
	WeightingNone Weighting = iota

	// WeightingPropagated fits unweighted and propagates sigma into the uncertainties.
	WeightingPropagated

	// WeightingExplicit fits every column with its own weights |sigma|.
	WeightingExplicit

	// WeightingStatistical fits every column with weights sqrt(|b|).
	WeightingStatistical
)

// String implements fmt.Stringer.
func (w Weighting) String() string {
	switch w {
	case WeightingNone:
		return "none"
	case WeightingPropagated:
		return "propagated"
	case WeightingExplicit:
		return "explicit"
	case WeightingStatistical:
		return "statistical"
	default:
		return "unknown"
	}
}

// OutputMode names which quantities a solve produces.
type OutputMode int

const (
	// OutputParameters produces parameters only.
	OutputParameters OutputMode = iota

	// OutputUncertainty adds per-parameter standard errors.
	OutputUncertainty

	// OutputCovariance adds one covariance matrix per column (and the uncertainties).
	OutputCovariance
)

// String implements fmt.Stringer.
func (m OutputMode) String() string {
	switch m {
	case OutputParameters:
		return "parameters"
	case OutputUncertainty:
		return "uncertainty"
	case OutputCovariance:
		return "covariance"
	default:
		return "unknown"
	}
}

// Strategy is the (weighting, output) pair selected once per solve.
type Strategy struct {
	Weighting Weighting
	Output    OutputMode
}

// String renders the strategy as "weighting/output".
func (s Strategy) String() string {
	return s.Weighting.String() + "/" + s.Output.String()
}

// selectStrategy maps finalized options to exactly one strategy.
// Sigma wins over the statistical fallback.
func selectStrategy(o *Options) Strategy {
	var s Strategy
	switch {
	case o.hasSigma() && o.weight:
		s.Weighting = WeightingExplicit
	case o.hasSigma():
		s.Weighting = WeightingPropagated
	case o.weight:
		s.Weighting = WeightingStatistical
	default:
		s.Weighting = WeightingNone
	}

	switch {
	case o.covariances:
		s.Output = OutputCovariance
	case o.uncertainties:
		s.Output = OutputUncertainty
	default:
		s.Output = OutputParameters
	}

	return s
}
