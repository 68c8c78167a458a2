// SPDX-License-Identifier: MIT

package jacobian

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/lvfit/lstsq"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultRelativeStep scales the central-difference step:
	// δᵢ = max(|pᵢ|, 1) · DefaultRelativeStep.
	DefaultRelativeStep = 1e-5

	// DefaultWorkers probes parameters sequentially.
	DefaultWorkers = 1
)

const (
	msgStepInvalid       = "relative step must be finite and > 0, got %v"
	msgWorkersInvalid    = "workers must be >= 1, got %d"
	msgDerivativeNil     = "derivative is nil"
	msgLoggerNil         = "logger is nil"
	msgSolverOptionIsNil = "solver option %d is nil"
)

// Option mutates builder options.
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
type Options struct {
	derivative Derivative   // nil ⇒ central differences
	step       float64      // DefaultRelativeStep
	workers    int          // DefaultWorkers
	solverOpts []lstsq.Option
	logger     *slog.Logger // discards by default

	err error // first invalid setter
}

func (o *Options) fail(format string, args ...any) {
	if o.err == nil {
		o.err = fmt.Errorf(format, args...)
	}
}

// WithDerivative replaces finite differences with an analytic derivative.
func WithDerivative(df Derivative) Option {
	return func(o *Options) {
		if df == nil {
			o.fail(msgDerivativeNil)
			return
		}
		o.derivative = df
	}
}

// WithRelativeStep overrides DefaultRelativeStep (finite, > 0).
// Larger steps raise truncation error; smaller ones raise cancellation error.
func WithRelativeStep(h float64) Option {
	return func(o *Options) {
		if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
			o.fail(msgStepInvalid, h)
			return
		}
		o.step = h
	}
}

// WithWorkers bounds the number of parameters probed concurrently (n ≥ 1).
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.fail(msgWorkersInvalid, n)
			return
		}
		o.workers = n
	}
}

// WithSolverOptions forwards options to lstsq.SolveVector in Step.
// They are applied after the builder's own logger, so they may override it.
func WithSolverOptions(opts ...lstsq.Option) Option {
	return func(o *Options) {
		for i, so := range opts {
			if so == nil {
				o.fail(msgSolverOptionIsNil, i)
				return
			}
		}
		o.solverOpts = append(o.solverOpts, opts...)
	}
}

// WithLogger routes debug records to l; Step forwards it to the solver.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l == nil {
			o.fail(msgLoggerNil)
			return
		}
		o.logger = l
	}
}

func gatherOptions(opts ...Option) Options {
	o := Options{
		step:    DefaultRelativeStep,
		workers: DefaultWorkers,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
