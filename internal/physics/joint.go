package physics

import (
	"math"

	"github.com/san-kum/branchwave/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// conditionFunc returns the joint conditions as G_out·out + G_in·in = 0, with
// out = [out₁; out₂] and in = [in₁; in₂].
type conditionFunc func(theta float64, p1, p2 Params, w float64) (gOut, gIn *mat.CDense)

// quantity indexes the physical fields at a member end.
type quantity int

const (
	disp quantity = iota
	slope
	curvature
	third
	axial
	strain
	numQuantities
)

// field holds the coefficients of one quantity on the plus and minus amplitudes
// [bending, evanescent, longitudinal] at the same station.
type field struct {
	plus, minus [3]complex128
}

func fieldsAt(k, kappa float64) [numQuantities]field {
	kc := complex(k, 0)
	k2, k3 := kc*kc, kc*kc*kc
	ik := complex(0, kappa)
	return [numQuantities]field{
		disp:      {plus: [3]complex128{1, 1, 0}, minus: [3]complex128{1, 1, 0}},
		slope:     {plus: [3]complex128{-1i * kc, -kc, 0}, minus: [3]complex128{1i * kc, kc, 0}},
		curvature: {plus: [3]complex128{-k2, k2, 0}, minus: [3]complex128{-k2, k2, 0}},
		third:     {plus: [3]complex128{1i * k3, -k3, 0}, minus: [3]complex128{-1i * k3, k3, 0}},
		axial:     {plus: [3]complex128{0, 0, 1}, minus: [3]complex128{0, 0, 1}},
		strain:    {plus: [3]complex128{0, 0, -ik}, minus: [3]complex128{0, 0, ik}},
	}
}

// term is coeff·quantity on member 1 or member 2.
type term struct {
	second bool
	q      quantity
	coeff  float64
}

// rigidJoint states the conditions of a rigid massless joint. Member 1's axis
// points into the joint, so its arriving waves are plus waves; member 2's axis
// points away, so its arriving waves are minus waves.
func rigidJoint(theta float64, p1, p2 Params, w float64) (*mat.CDense, *mat.CDense) {
	c, s := math.Cos(theta), math.Sin(theta)
	ei1, ea1 := p1.BendingStiffness, p1.AxialStiffness
	ei2, ea2 := p2.BendingStiffness, p2.AxialStiffness
	k1, kappa1 := p1.Wavenumbers(w)
	k2, kappa2 := p2.Wavenumbers(w)

	rows := [][]term{
		// displacement along member 1's axis
		{{false, axial, 1}, {true, axial, -c}, {true, disp, s}},
		// displacement across member 1's axis
		{{false, disp, 1}, {true, axial, -s}, {true, disp, -c}},
		// rotation
		{{false, slope, 1}, {true, slope, -1}},
		// force along member 1's axis
		{{false, strain, ea1}, {true, strain, -c * ea2}, {true, third, -s * ei2}},
		// force across member 1's axis
		{{false, third, -ei1}, {true, strain, -s * ea2}, {true, third, c * ei2}},
		// moment
		{{false, curvature, ei1}, {true, curvature, -ei2}},
	}
	scale := []float64{1, 1, 1, 1, 1, 1}
	if k1 > 0 {
		scale[2] = 1 / k1
		scale[3] = 1 / (ei1 * k1 * k1 * k1)
		scale[4] = scale[3]
		scale[5] = 1 / (ei1 * k1 * k1)
	}

	f1, f2 := fieldsAt(k1, kappa1), fieldsAt(k2, kappa2)
	gOut := mat.NewCDense(6, 6, nil)
	gIn := mat.NewCDense(6, 6, nil)
	for i, row := range rows {
		sc := complex(scale[i], 0)
		for _, t := range row {
			cf := sc * complex(t.coeff, 0)
			for ch := 0; ch < 3; ch++ {
				if t.second {
					gOut.Set(i, 3+ch, gOut.At(i, 3+ch)+cf*f2[t.q].plus[ch])
					gIn.Set(i, 3+ch, gIn.At(i, 3+ch)+cf*f2[t.q].minus[ch])
				} else {
					gOut.Set(i, ch, gOut.At(i, ch)+cf*f1[t.q].minus[ch])
					gIn.Set(i, ch, gIn.At(i, ch)+cf*f1[t.q].plus[ch])
				}
			}
		}
	}
	return gOut, gIn
}

// scatter solves G_out·out + G_in·in = 0 for out = S·in and splits S into blocks.
func scatter(gOut, gIn *mat.CDense) (JointMatrices, error) {
	lu, err := linalg.Factorize(gOut)
	if err != nil {
		return JointMatrices{}, err
	}
	if lu.Singular() {
		return JointMatrices{}, ErrSingularJoint
	}

	s := mat.NewCDense(6, 6, nil)
	col := make([]complex128, 6)
	for j := 0; j < 6; j++ {
		for i := 0; i < 6; i++ {
			col[i] = -gIn.At(i, j)
		}
		x, err := lu.Solve(col)
		if err != nil {
			return JointMatrices{}, ErrSingularJoint
		}
		for i, v := range x {
			s.Set(i, j, v)
		}
	}

	return JointMatrices{
		R11: block(s, 0, 0),
		T21: block(s, 0, 3),
		T12: block(s, 3, 0),
		R22: block(s, 3, 3),
	}, nil
}

func block(s mat.CMatrix, r, c int) *mat.CDense {
	b := mat.NewCDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			b.Set(i, j, s.At(r+i, c+j))
		}
	}
	return b
}
