package physics

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func steel(h float64) Params {
	const e, rho = 206e9, 7800.0
	a, i := h*h, h*h*h*h/12
	return Params{
		BendingStiffness: e * i,
		AxialStiffness:   e * a,
		WaveSpeed:        math.Sqrt(e / rho),
		RadiusOfGyration: math.Sqrt(i / a),
	}
}

func eval(f field, plus, minus []complex128) complex128 {
	var v complex128
	for c := 0; c < 3; c++ {
		v += f.plus[c]*plus[c] + f.minus[c]*minus[c]
	}
	return v
}

func TestReflectionSatisfiesBoundary(t *testing.T) {
	table := NewTable()
	p := steel(1.27e-2)
	w := 2 * math.Pi * 80
	k, kappa := p.Wavenumbers(w)
	f := fieldsAt(k, kappa)
	in := []complex128{0.3 - 0.7i, -1.1 + 0.2i, 0.5i}

	tests := []struct {
		kind Kind
		zero []quantity
	}{
		{Free, []quantity{curvature, third, strain}},
		{Fixed, []quantity{disp, slope, axial}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			r, err := table.Reflection(tt.kind, p, w)
			require.NoError(t, err)

			out := make([]complex128, 3)
			for i := range out {
				for j := range in {
					out[i] += r.At(i, j) * in[j]
				}
			}
			// near end: outgoing waves are plus waves
			for _, q := range tt.zero {
				assert.InDelta(t, 0, cmplx.Abs(eval(f[q], out, in)), 1e-9*math.Pow(k, 3), "quantity %d", q)
			}
			// far end: the same matrix with the roles of plus and minus swapped
			for _, q := range tt.zero {
				assert.InDelta(t, 0, cmplx.Abs(eval(f[q], in, out)), 1e-9*math.Pow(k, 3), "quantity %d", q)
			}
		})
	}
}

func TestReflectionIsCopy(t *testing.T) {
	table := NewTable()
	r, err := table.Reflection(Free, Params{}, 0)
	require.NoError(t, err)
	r.Set(0, 0, 42)

	again, err := table.Reflection(Free, Params{}, 0)
	require.NoError(t, err)
	assert.Equal(t, complex128(-1i), again.At(0, 0))
}

func TestUnknownKind(t *testing.T) {
	table := NewTable()
	_, err := table.Reflection(TwoMemberJoint, Params{}, 1)
	require.ErrorIs(t, err, ErrUnknownKind)
	_, err = table.Joint(Free, 0, Params{}, Params{}, 1)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestStraightJointIsTransparent(t *testing.T) {
	table := NewTable()
	p := steel(1.27e-2)

	for _, f := range []float64{5, 42.17, 500, 4000} {
		jm, err := table.Joint(TwoMemberJoint, 0, p, p, 2*math.Pi*f)
		require.NoError(t, err)

		zero := mat.NewCDense(3, 3, nil)
		eye := mat.NewCDense(3, 3, []complex128{1, 0, 0, 0, 1, 0, 0, 0, 1})
		assert.True(t, mat.CEqualApprox(jm.R11, zero, 1e-9), "R11 at %g Hz", f)
		assert.True(t, mat.CEqualApprox(jm.R22, zero, 1e-9), "R22 at %g Hz", f)
		assert.True(t, mat.CEqualApprox(jm.T12, eye, 1e-9), "T12 at %g Hz", f)
		assert.True(t, mat.CEqualApprox(jm.T21, eye, 1e-9), "T21 at %g Hz", f)
	}
}

func TestJointConservesPower(t *testing.T) {
	table := NewTable()
	p1, p2 := steel(1.27e-2), steel(2e-2)
	w := 2 * math.Pi * 300
	k1, kappa1 := p1.Wavenumbers(w)
	k2, kappa2 := p2.Wavenumbers(w)

	// time-averaged power per unit |amplitude|² of the propagating channels
	weights := func(p Params, k, kappa float64) [3]float64 {
		return [3]float64{p.BendingStiffness * k * k * k, 0, p.AxialStiffness * kappa / 2}
	}
	w1, w2 := weights(p1, k1, kappa1), weights(p2, k2, kappa2)

	for _, theta := range []float64{0, math.Pi / 4, math.Pi / 2, 2.5} {
		jm, err := table.Joint(TwoMemberJoint, theta, p1, p2, w)
		require.NoError(t, err)

		in1 := []complex128{1, 0, 0.4 - 0.2i}
		in2 := []complex128{-0.3 + 0.8i, 0, 0.1i}
		out1 := make([]complex128, 3)
		out2 := make([]complex128, 3)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				out1[i] += jm.R11.At(i, j)*in1[j] + jm.T21.At(i, j)*in2[j]
				out2[i] += jm.T12.At(i, j)*in1[j] + jm.R22.At(i, j)*in2[j]
			}
		}

		power := func(a []complex128, wt [3]float64) float64 {
			var s float64
			for c, v := range a {
				s += wt[c] * real(v*cmplx.Conj(v))
			}
			return s
		}
		pin := power(in1, w1) + power(in2, w2)
		pout := power(out1, w1) + power(out2, w2)
		assert.InEpsilon(t, pin, pout, 1e-8, "theta %g", theta)
	}
}

func TestJointSingularAtRest(t *testing.T) {
	table := NewTable()
	p := steel(1.27e-2)
	_, err := table.Joint(TwoMemberJoint, math.Pi/4, p, p, 0)
	require.ErrorIs(t, err, ErrSingularJoint)
}

func TestRightAngleJointCouplesChannels(t *testing.T) {
	// identical members meeting at 90°: member 1's bending drives member 2's axial
	// wave and vice versa
	table := NewTable()
	p := steel(1.27e-2)
	jm, err := table.Joint(TwoMemberJoint, math.Pi/2, p, p, 2*math.Pi*150)
	require.NoError(t, err)

	assert.Greater(t, cmplx.Abs(jm.T12.At(2, 0)), 1e-6)
	assert.Greater(t, cmplx.Abs(jm.T12.At(0, 2)), 1e-6)
	assert.Greater(t, cmplx.Abs(jm.R11.At(0, 0)), 1e-6)
}
