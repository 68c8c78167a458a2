// SPDX-License-Identifier: MIT

// Package lstsq: functional configuration for the solver. This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors that record nonsensical values instead of panicking,
//   - gatherOptions / finalizeOptions helpers that enforce invariants.
//
// Notes:
//   - Invalid values surface from Solve as ErrConfiguration. The first invalid
//     setter wins; later valid setters do not clear it.
//   - Covariances imply uncertainties. finalizeOptions enforces this after all
//     setters ran, so the order of WithUncertainties/WithCovariances is irrelevant.
//   - Sigma takes precedence over statistical weighting whenever both are given.
package lstsq

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/lvfit/matrix"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultUncertainties computes parameter standard errors unless disabled.
	DefaultUncertainties = true

	// DefaultCovariances skips full covariance matrices unless requested.
	DefaultCovariances = false

	// DefaultWeight disables weighted fitting; sigma, if given, is only propagated.
	DefaultWeight = false

	// DefaultDigestedOutput prefers positional outputs.
	DefaultDigestedOutput = false

	// DefaultWorkers runs per-column loops sequentially.
	DefaultWorkers = 1
)

// machineEpsilon is the float64 spacing at 1.0 (2⁻⁵²).
const machineEpsilon = 0x1p-52

// ---------- Internal error messages (no magic strings) ----------

const (
	msgRcondInvalid   = "rcond must be finite and non-negative, got %v"
	msgWorkersInvalid = "workers must be >= 1, got %d"
	msgSigmaNil       = "sigma is nil"
	msgLoggerNil      = "logger is nil"
)

// Option mutates solver options.
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// Fields are unexported; public entry points accept ...Option.
type Options struct {
	rcond    float64 // relative cutoff; meaningful only when rcondSet
	rcondSet bool    // false ⇒ N * machineEpsilon

	sigma    matrix.Matrix // M×K or M×1 uncertainties
	sigmaVec []float64     // M-vector uncertainties, broadcast across columns

	weight         bool // DefaultWeight
	uncertainties  bool // DefaultUncertainties
	covariances    bool // DefaultCovariances
	digestedOutput bool // DefaultDigestedOutput

	workers int          // DefaultWorkers
	logger  *slog.Logger // discards by default

	err error // first invalid setter, reported as ErrConfiguration
}

// fail records the first configuration error.
func (o *Options) fail(format string, args ...any) {
	if o.err == nil {
		o.err = fmt.Errorf(format, args...)
	}
}

// hasSigma reports whether explicit uncertainties were supplied.
func (o *Options) hasSigma() bool { return o.sigma != nil || o.sigmaVec != nil }

// rcondFor resolves the relative cutoff for a model matrix with n columns.
func (o *Options) rcondFor(n int) float64 {
	if o.rcondSet {
		return o.rcond
	}

	return float64(n) * machineEpsilon
}

// WithRcond sets the relative singular-value cutoff: singular values below
// rcond·s_max are truncated. rcond must be finite and ≥ 0; zero keeps every
// non-zero singular value.
func WithRcond(rcond float64) Option {
	return func(o *Options) {
		if math.IsNaN(rcond) || math.IsInf(rcond, 0) || rcond < 0 {
			o.fail(msgRcondInvalid, rcond)
			return
		}
		o.rcond, o.rcondSet = rcond, true
	}
}

// WithSigma supplies elementwise uncertainties shaped M×K or M×1.
// Without WithWeight(true) the fit stays unweighted and sigma is propagated
// into the parameter uncertainties.
func WithSigma(sigma matrix.Matrix) Option {
	return func(o *Options) {
		if matrix.ValidateNotNil(sigma) != nil {
			o.fail(msgSigmaNil)
			return
		}
		o.sigma, o.sigmaVec = sigma, nil
	}
}

// WithSigmaVector supplies one uncertainty per observation row, shared by all columns.
// The slice is copied.
func WithSigmaVector(sigma []float64) Option {
	return func(o *Options) {
		if sigma == nil {
			o.fail(msgSigmaNil)
			return
		}
		o.sigmaVec = append([]float64(nil), sigma...)
		o.sigma = nil
	}
}

// WithWeight toggles weighted fitting. With sigma, each column is fitted with
// weights |sigma|; without sigma, statistical weights sqrt(|b|) are used.
func WithWeight(weight bool) Option {
	return func(o *Options) { o.weight = weight }
}

// WithStatisticalWeight is WithWeight(true).
//
// Caller beware: statistical weights assume counting-like data. Zero or
// negative observations are not rejected; sqrt(|b|) is used as-is and zero
// weights are lifted to MinWeightFloor.
func WithStatisticalWeight() Option {
	return WithWeight(true)
}

// WithUncertainties toggles computation of parameter standard errors.
// It has no effect when covariances are requested.
func WithUncertainties(enabled bool) Option {
	return func(o *Options) { o.uncertainties = enabled }
}

// WithCovariances requests one N×N covariance matrix per column.
// Uncertainties are computed as well.
func WithCovariances() Option {
	return func(o *Options) { o.covariances = true }
}

// WithDigestedOutput marks the result as preferring the labeled form (Result.Digest).
func WithDigestedOutput() Option {
	return func(o *Options) { o.digestedOutput = true }
}

// WithWorkers bounds the number of columns solved concurrently (n ≥ 1).
// Results do not depend on n.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.fail(msgWorkersInvalid, n)
			return
		}
		o.workers = n
	}
}

// WithLogger routes debug records (strategy, truncation) to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l == nil {
			o.fail(msgLoggerNil)
			return
		}
		o.logger = l
	}
}

// defaultOptions returns the zero-configuration solver settings.
func defaultOptions() Options {
	return Options{
		weight:         DefaultWeight,
		uncertainties:  DefaultUncertainties,
		covariances:    DefaultCovariances,
		digestedOutput: DefaultDigestedOutput,
		workers:        DefaultWorkers,
		logger:         slog.New(slog.DiscardHandler),
	}
}

// gatherOptions applies setters over the defaults (last writer wins) and
// finalizes derived invariants.
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	finalizeOptions(&o)

	return o
}

// finalizeOptions enforces invariants that depend on several setters.
func finalizeOptions(o *Options) {
	if o.covariances {
		o.uncertainties = true
	}
}
