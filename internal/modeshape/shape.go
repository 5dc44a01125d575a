package modeshape

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/branchwave/internal/frame"
	"github.com/san-kum/branchwave/internal/wave"
)

// Curve is the sampled real mode shape of one member, positions measured from
// its near end.
type Curve struct {
	Member     int
	Placement  frame.Placement
	Positions  []float64
	Transverse []float64
	Axial      []float64
}

// Deformed returns the displaced centre line with displacements multiplied by scale.
func (c Curve) Deformed(scale float64) []frame.Point {
	pts := make([]frame.Point, len(c.Positions))
	for i, x := range c.Positions {
		pts[i] = c.Placement.At(x, scale*c.Axial[i], scale*c.Transverse[i])
	}
	return pts
}

// Undeformed returns the centre line at the sample positions.
func (c Curve) Undeformed() []frame.Point {
	return c.Deformed(0)
}

// Shape samples every member of f every step metres and returns real mode
// shapes scaled so that the largest displacement in the frame is 1. The global
// phase is chosen so that the largest displacement is real.
func Shape(f *frame.Frame, sol *frame.Solution, step float64) ([]Curve, error) {
	if !(step > 0) {
		return nil, fmt.Errorf("%w: sampling step %g", wave.ErrValidation, step)
	}
	layout, err := f.Layout()
	if err != nil {
		return nil, err
	}

	members := f.Members()
	v := make([][]complex128, len(members))
	u := make([][]complex128, len(members))
	var peak complex128
	for i, m := range members {
		pos := samples(m.Length(), step)
		v[i] = make([]complex128, len(pos))
		u[i] = make([]complex128, len(pos))
		for j, x := range pos {
			fields, err := m.Fields(sol.W, x, sol)
			if err != nil {
				return nil, err
			}
			v[i][j], u[i][j] = fields.V, fields.U
			for _, d := range []complex128{fields.V, fields.U} {
				if cmplx.Abs(d) > cmplx.Abs(peak) {
					peak = d
				}
			}
		}
	}
	if peak == 0 {
		peak = 1
	}

	curves := make([]Curve, len(members))
	for i, m := range members {
		c := Curve{
			Member:     m.ID(),
			Placement:  layout[i],
			Positions:  samples(m.Length(), step),
			Transverse: make([]float64, len(v[i])),
			Axial:      make([]float64, len(u[i])),
		}
		for j := range v[i] {
			c.Transverse[j] = real(v[i][j] / peak)
			c.Axial[j] = real(u[i][j] / peak)
		}
		curves[i] = c
	}
	return curves, nil
}

// samples returns 0, step, 2·step, … ending exactly at length.
func samples(length, step float64) []float64 {
	n := int(math.Ceil(length/step-1e-9)) + 1
	pos := make([]float64, n)
	for j := range pos {
		pos[j] = math.Min(float64(j)*step, length)
	}
	return pos
}
