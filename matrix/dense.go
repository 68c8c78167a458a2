// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Offer column-oriented helpers (Col, SetCol) because the solver treats every
//     column of an observation matrix as an independent right-hand side.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); Col/SetCol: O(r).

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// DefaultValidateNaNInf toggles finite-only validation in Set for newly created matrices.
const DefaultValidateNaNInf = true

// ---------- error context tags ----------

const (
	ctxAt     = "At"     // method tag used in error wrappers
	ctxSet    = "Set"    // method tag used in error wrappers
	ctxCol    = "Col"    // method tag used in error wrappers
	ctxSetCol = "SetCol" // method tag used in error wrappers
)

// ---------- Formatting literals ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
//   - validateNaNInf enables NaN/Inf rejection in Set.
type Dense struct {
	r, c           int       // row and column counts (>0)
	data           []float64 // contiguous row-major storage (len == r*c)
	validateNaNInf bool      // numeric guard: reject NaN/Inf in Set when true
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate zero-filled buffer and set the default numeric policy.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{
		r:              rows,
		c:              cols,
		data:           make([]float64, rows*cols),
		validateNaNInf: DefaultValidateNaNInf,
	}, nil
}

// NewDenseFrom creates an r×c matrix holding a copy of the row-major values.
// Implementation:
//   - Stage 1: validate shape and len(values) == rows*cols.
//   - Stage 2: enforce the numeric policy on every value.
//   - Stage 3: copy into a fresh buffer; the caller keeps ownership of values.
//
// Errors:
//   - ErrInvalidDimensions (bad shape or wrong slice length).
//   - ErrNaNInf (non-finite value; wrapped with its coordinates).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDenseFrom(rows, cols int, values []float64) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(values) != rows*cols {
		return nil, ErrInvalidDimensions
	}
	for idx, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, denseErrorf(ctxSet, idx/cols, idx%cols, ErrNaNInf)
		}
	}
	copy(m.data, values)

	return m, nil
}

// NewColumn creates an n×1 matrix from a vector (copy).
// It is the canonical way to lift a 1-D observation vector into the batched form.
// Complexity: O(n).
func NewColumn(values []float64) (*Dense, error) {
	if values == nil {
		return nil, ErrNilMatrix
	}

	return NewDenseFrom(len(values), 1, values)
}

// Densify returns m as an independent *Dense.
// A *Dense input is cloned through its flat buffer; any other implementation is
// copied element by element through At.
// Errors: ErrNilMatrix, or the first At error.
// Complexity: O(r*c).
func Densify(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, err
	}
	if d, ok := m.(*Dense); ok {
		return d.Clone().(*Dense), nil
	}

	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	var i, j int
	var v float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, err
			}
			res.data[i*cols+j] = v
		}
	}

	return res, nil
}

// Rows returns the row count.
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count.
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf computes the row-major offset or returns ErrOutOfRange.
// Complexity: O(1).
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	// Row-major offset: i*c + j.
	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns an error (bounds or numeric policy).
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for non-finite v when the policy is on.
//
// Complexity: O(1).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if m.validateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v

	return nil
}

// Clone returns a deep copy (new buffer, same numeric policy).
// Complexity: O(r*c).
func (m *Dense) Clone() Matrix {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{
		r:              m.r,
		c:              m.c,
		data:           cp,
		validateNaNInf: m.validateNaNInf,
	}
}

// Col returns a copy of column j.
// Errors: ErrOutOfRange.
// Complexity: O(r).
func (m *Dense) Col(j int) ([]float64, error) {
	if j < 0 || j >= m.c {
		return nil, denseErrorf(ctxCol, 0, j, ErrOutOfRange)
	}
	out := make([]float64, m.r)
	for i := 0; i < m.r; i++ {
		out[i] = m.data[i*m.c+j]
	}

	return out, nil
}

// SetCol overwrites column j with v (len(v) must equal Rows()).
// Errors: ErrOutOfRange, ErrDimensionMismatch, ErrNaNInf (policy on).
// The column is left untouched when any error is returned.
// Complexity: O(r).
func (m *Dense) SetCol(j int, v []float64) error {
	if j < 0 || j >= m.c {
		return denseErrorf(ctxSetCol, 0, j, ErrOutOfRange)
	}
	if len(v) != m.r {
		return denseErrorf(ctxSetCol, len(v), j, ErrDimensionMismatch)
	}
	var i int
	if m.validateNaNInf {
		for i = 0; i < m.r; i++ {
			if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
				return denseErrorf(ctxSetCol, i, j, ErrNaNInf)
			}
		}
	}
	for i = 0; i < m.r; i++ {
		m.data[i*m.c+j] = v[i]
	}

	return nil
}

// RawValues returns a row-major copy of the backing buffer.
// Complexity: O(r*c).
func (m *Dense) RawValues() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)

	return out
}

// String renders rows as lines with comma-separated values, for diagnostics.
// Complexity: O(r*c).
func (m *Dense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ {
		b.WriteString(_fmtRowOpen)
		base = i * m.c
		for j = 0; j < m.c; j++ {
			b.WriteString(fmt.Sprintf("%g", m.data[base+j]))
			if j+1 < m.c {
				b.WriteString(_fmtSep)
			}
		}
		b.WriteString(_fmtRowClose)
	}

	return b.String()
}
