// Package modeshape recovers mode shapes at verified natural frequencies.
package modeshape

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/branchwave/internal/frame"
	"github.com/san-kum/branchwave/internal/linalg"
	"github.com/san-kum/branchwave/internal/wave"
)

// Default tolerances on the smallest eigenvalue of A at a natural frequency.
const (
	DefaultAtol = 1e-6
	DefaultRtol = 1e-6
)

// Displacement is the complex displacement at one position along a member.
type Displacement struct {
	Position   float64
	Transverse complex128
	Axial      complex128
}

// SolveParameters returns the null vector of A(2π·naturalFreq) as a solution
// whose largest amplitude is 1. The eigenvalue of smallest modulus must satisfy
// |λ| ≤ atol + rtol·max|λ|, otherwise the frequency is rejected with
// wave.ErrNotNaturalFrequency.
func SolveParameters(f *frame.Frame, naturalFreq, atol, rtol float64) (*frame.Solution, error) {
	w := 2 * math.Pi * math.Abs(naturalFreq)
	a, err := f.EquationMatrix(w)
	if err != nil {
		return nil, err
	}
	pair, err := linalg.SmallestEigen(a)
	if err != nil {
		return nil, err
	}

	abs := cmplx.Abs(pair.Value)
	if limit := atol + rtol*pair.MaxAbs; abs > limit {
		return nil, fmt.Errorf("%w: %g Hz has smallest eigenvalue %.3g > %.3g", wave.ErrNotNaturalFrequency, naturalFreq, abs, limit)
	}
	f.Sink().Infof("mode at %g Hz: |λ_min|=%.3g", naturalFreq, abs)
	return frame.NewSolution(w, f.Params(), pair.Vector), nil
}

// Deformation evaluates the displacement of a member at positions measured from
// the end owned by originConstraint.
func Deformation(f *frame.Frame, memberID, originConstraint int, positions []float64, sol *frame.Solution) ([]Displacement, error) {
	m, err := f.Member(memberID)
	if err != nil {
		return nil, err
	}
	out := make([]Displacement, len(positions))
	for i, x := range positions {
		local, err := m.LocalPosition(originConstraint, x)
		if err != nil {
			return nil, err
		}
		fields, err := m.Fields(sol.W, local, sol)
		if err != nil {
			return nil, err
		}
		out[i] = Displacement{Position: x, Transverse: fields.V, Axial: fields.U}
	}
	return out, nil
}
