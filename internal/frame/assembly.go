package frame

import (
	"errors"
	"fmt"

	"github.com/san-kum/branchwave/internal/linalg"
	"github.com/san-kum/branchwave/internal/wave"
	"gonum.org/v1/gonum/mat"
)

// Equations returns the constraint rows in constraint-id order followed by the
// member rows in member-id order.
func (f *Frame) Equations(w float64) ([]wave.Equation, error) {
	var eqs []wave.Equation
	for _, c := range f.constraints {
		rows, err := c.Equations(w)
		if err != nil {
			return nil, err
		}
		eqs = append(eqs, rows...)
	}
	for _, m := range f.members {
		eqs = append(eqs, m.Equations(w)...)
	}
	return eqs, nil
}

// EquationMatrix returns A(w), the coefficient of every unknown in every row.
func (f *Frame) EquationMatrix(w float64) (*mat.CDense, error) {
	a, _, err := f.system(w)
	return a, err
}

// system assembles A(w) and the constant column c(w) of A·x + c = 0.
func (f *Frame) system(w float64) (*mat.CDense, []complex128, error) {
	params := f.Params()
	eqs, err := f.Equations(w)
	if err != nil {
		return nil, nil, err
	}
	if len(eqs) != len(params) || len(params) == 0 {
		return nil, nil, fmt.Errorf("%w: %d equations for %d parameters", wave.ErrDimensionMismatch, len(eqs), len(params))
	}

	index := make(map[wave.Symbol]int, len(params))
	for i, p := range params {
		index[p] = i
	}

	n := len(params)
	a := mat.NewCDense(n, n, nil)
	c := make([]complex128, n)
	for i, eq := range eqs {
		for _, t := range eq.Terms {
			j, ok := index[t.Symbol]
			if !ok {
				return nil, nil, fmt.Errorf("%w: row %d references %s", wave.ErrNotLinear, i, t.Symbol)
			}
			a.Set(i, j, a.At(i, j)+t.Coeff)
		}
		c[i] = eq.Constant
	}

	f.metrics.Assembled()
	f.sink.Debugf("assembled %dx%d system at w=%g", n, n, w)
	return a, c, nil
}

// Determinant returns det A(w).
func (f *Frame) Determinant(w float64) (complex128, error) {
	a, err := f.EquationMatrix(w)
	if err != nil {
		return 0, err
	}
	det, err := linalg.Det(a)
	if err != nil {
		return 0, err
	}
	f.metrics.Determinant()
	return det, nil
}

// Singularity returns σ_min/σ_max of A(w), zero at an exact natural frequency.
func (f *Frame) Singularity(w float64) (float64, error) {
	a, err := f.EquationMatrix(w)
	if err != nil {
		return 0, err
	}
	return linalg.SingularityRatio(a)
}

// Response solves the forced problem A(w)·x = −c(w) for the amplitudes driven by
// the point loads.
func (f *Frame) Response(w float64) (*Solution, error) {
	a, c, err := f.system(w)
	if err != nil {
		return nil, err
	}
	b := make([]complex128, len(c))
	for i, v := range c {
		b[i] = -v
	}
	x, err := linalg.Solve(a, b)
	if errors.Is(err, linalg.ErrSingular) {
		return nil, fmt.Errorf("response at w=%g: %w", w, err)
	}
	if err != nil {
		return nil, err
	}
	f.sink.Debugf("forced response at w=%g", w)
	return NewSolution(w, f.Params(), x), nil
}
