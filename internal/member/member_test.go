package member

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/branchwave/internal/wave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var steel = Properties{Length: 0.5, Density: 7800, YoungsModulus: 206e9, Height: 1.27e-2}

func newSteel(t *testing.T, id int) *Member {
	t.Helper()
	m, err := New(id, steel)
	require.NoError(t, err)
	return m
}

func TestDerivedQuantities(t *testing.T) {
	m := newSteel(t, 0)

	assert.InDelta(t, 1.27e-2*1.27e-2, m.Area(), 1e-15)
	assert.InDelta(t, math.Pow(1.27e-2, 4)/12, m.Inertia(), 1e-18)
	assert.InDelta(t, 5139.091, m.WaveSpeed(), 1e-3)
	assert.InDelta(t, 0.003666174, m.RadiusOfGyration(), 1e-9)

	w := 2 * math.Pi * 100
	assert.InDelta(t, math.Sqrt(w*m.RadiusOfGyration()/m.WaveSpeed()), m.Alpha(w), 1e-15)
	assert.InDelta(t, w*m.RadiusOfGyration()/m.WaveSpeed(), m.Beta(w), 1e-15)
	assert.InDelta(t, math.Sqrt(w/(m.WaveSpeed()*m.RadiusOfGyration())), m.BendingWavenumber(w), 1e-9)
	assert.InDelta(t, w/m.WaveSpeed(), m.AxialWavenumber(w), 1e-12)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		props func(p *Properties)
	}{
		{"zero length", func(p *Properties) { p.Length = 0 }},
		{"negative density", func(p *Properties) { p.Density = -1 }},
		{"nan modulus", func(p *Properties) { p.YoungsModulus = math.NaN() }},
		{"infinite height", func(p *Properties) { p.Height = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := steel
			tt.props(&p)
			_, err := New(0, p)
			require.ErrorIs(t, err, wave.ErrValidation)
		})
	}
}

func TestPropagationMatrix(t *testing.T) {
	m := newSteel(t, 0)
	for _, f := range []float64{0, 1, 42.17, 1000, 25000} {
		p := m.PropagationMatrix(2*math.Pi*f, m.Length())
		for i := 0; i < wave.NumChannels; i++ {
			for j := 0; j < wave.NumChannels; j++ {
				if i != j {
					assert.Zero(t, p.At(i, j))
				}
			}
		}
		assert.InDelta(t, 1, cmplx.Abs(p.At(0, 0)), 1e-12, "bending at %g Hz", f)
		assert.LessOrEqual(t, cmplx.Abs(p.At(1, 1)), 1.0, "evanescent at %g Hz", f)
		assert.InDelta(t, 1, cmplx.Abs(p.At(2, 2)), 1e-12, "longitudinal at %g Hz", f)
	}

	// kL = α·L/K for the bending phase
	w := 2 * math.Pi * 50
	kl := m.BendingWavenumber(w) * m.Length()
	got := m.PropagationMatrix(w, m.Length()).At(0, 0)
	assert.InDelta(t, 0, cmplx.Abs(got-cmplx.Exp(complex(0, -kl))), 1e-12)
}

func TestConstraintLimit(t *testing.T) {
	m := newSteel(t, 0)
	require.NoError(t, m.Attach(0))
	require.NoError(t, m.Attach(1))
	assert.False(t, m.CheckConstraintCount())

	err := m.Attach(2)
	require.ErrorIs(t, err, wave.ErrOverConstrained)
	assert.Equal(t, []int{0, 1}, m.Constraints())
	assert.Equal(t, 2, m.ConstraintCount())
}

func TestParametersDirection(t *testing.T) {
	m := newSteel(t, 4)
	require.NoError(t, m.Attach(7))
	require.NoError(t, m.Attach(3))

	in, out, err := m.Parameters(3)
	require.NoError(t, err)
	assert.Equal(t, wave.NewVector(4, "a", wave.Minus), in)
	assert.Equal(t, wave.NewVector(4, "a", wave.Plus), out)

	in, out, err = m.Parameters(7)
	require.NoError(t, err)
	assert.Equal(t, wave.NewVector(4, "b", wave.Plus), in)
	assert.Equal(t, wave.NewVector(4, "b", wave.Minus), out)

	_, _, err = m.Parameters(5)
	require.ErrorIs(t, err, wave.ErrUnknownConstraint)

	x, err := m.LocalPosition(7, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, x, 1e-15)
}

func TestSymbolsAndEquations(t *testing.T) {
	m := newSteel(t, 1)
	syms := m.Symbols()
	require.Len(t, syms, 12)
	assert.Equal(t, "a_b^+1", syms[0].String())
	assert.Equal(t, "a_l^-1", syms[5].String())
	assert.Equal(t, "b_b^+1", syms[6].String())

	// the two end constraints supply the remaining six rows
	eqs := m.Equations(2 * math.Pi * 10)
	assert.Len(t, eqs, len(syms)-6)

	require.NoError(t, m.Attach(0))
	require.NoError(t, m.Attach(1))
	require.NoError(t, m.AddPointLoad(1, 10, 0.2))
	require.NoError(t, m.AddPointLoad(0, 5, 0.1))

	loads := m.Loads()
	require.Len(t, loads, 2)
	assert.InDelta(t, 0.1, loads[0].Position, 1e-15)
	assert.InDelta(t, 0.3, loads[1].Position, 1e-15)

	syms = m.Symbols()
	require.Len(t, syms, 12+2*12)
	assert.Equal(t, "g0_b^+1", syms[6].String())
	assert.Equal(t, "h1_b^-1", syms[27].String())

	eqs = m.Equations(2 * math.Pi * 10)
	assert.Len(t, eqs, len(syms)-6)

	var forced int
	for _, e := range eqs {
		if !e.Homogeneous() {
			forced++
		}
	}
	// two jump rows with bending and evanescent sources per load
	assert.Equal(t, 8, forced)
}

func TestPointLoadValidation(t *testing.T) {
	m := newSteel(t, 0)
	require.NoError(t, m.Attach(0))

	require.ErrorIs(t, m.AddPointLoad(0, 1, 0), wave.ErrValidation)
	require.ErrorIs(t, m.AddPointLoad(0, 1, 0.5), wave.ErrValidation)
	require.ErrorIs(t, m.AddPointLoad(0, math.NaN(), 0.2), wave.ErrValidation)
	require.ErrorIs(t, m.AddPointLoad(3, 1, 0.2), wave.ErrUnknownConstraint)

	require.NoError(t, m.AddPointLoad(0, 1, 0.2))
	require.ErrorIs(t, m.AddPointLoad(0, 2, 0.2), wave.ErrValidation)
	require.ErrorIs(t, m.AddPointLoad(0, 2, 0.2+1e-12), wave.ErrValidation)
	require.NoError(t, m.AddPointLoad(0, 2, 0.2+1e-6))
	assert.Len(t, m.Loads(), 2)
}

func TestFieldsPlainWave(t *testing.T) {
	m := newSteel(t, 0)
	w := 2 * math.Pi * 300
	k := m.BendingWavenumber(w)
	amps := AmplitudeMap{wave.Symbol{Member: 0, Station: "a", Dir: wave.Plus, Channel: wave.Bending}: 1}

	x := 0.123
	f, err := m.Fields(w, x, amps)
	require.NoError(t, err)

	v := cmplx.Exp(complex(0, -k*x))
	assert.InDelta(t, 0, cmplx.Abs(f.V-v), 1e-12)
	assert.InDelta(t, 0, cmplx.Abs(f.Slope-complex(0, -k)*v), 1e-9)
	assert.InDelta(t, 0, cmplx.Abs(f.Curvature-complex(-k*k, 0)*v), 1e-9)
	assert.Zero(t, f.U)

	_, err = m.Fields(w, 0.6, amps)
	require.ErrorIs(t, err, wave.ErrValidation)
}

func TestPointLoadJump(t *testing.T) {
	m := newSteel(t, 0)
	require.NoError(t, m.Attach(0))
	const force, x0 = 3.0, 0.2
	require.NoError(t, m.AddPointLoad(0, force, x0))

	w := 2 * math.Pi * 120
	s := m.Source(w, force)
	d := m.propagation(w, x0)

	// waves radiating away from the load on an otherwise quiet member
	amps := AmplitudeMap{}
	for c := 0; c < 2; c++ {
		ch := wave.Channel(c)
		amps[wave.Symbol{Member: 0, Station: "h0", Dir: wave.Plus, Channel: ch}] = s[c]
		amps[wave.Symbol{Member: 0, Station: "g0", Dir: wave.Minus, Channel: ch}] = s[c]
		amps[wave.Symbol{Member: 0, Station: "a", Dir: wave.Minus, Channel: ch}] = d[c] * s[c]
	}

	const eps = 1e-9
	left, err := m.Fields(w, x0-eps, amps)
	require.NoError(t, err)
	right, err := m.Fields(w, x0+eps, amps)
	require.NoError(t, err)

	scale := cmplx.Abs(left.V)
	assert.InDelta(t, 0, cmplx.Abs(left.V-right.V), 1e-6*scale)
	assert.InDelta(t, 0, cmplx.Abs(left.Slope-right.Slope), 1e-4*scale)
	assert.InDelta(t, 0, cmplx.Abs(left.Moment(m)-right.Moment(m)), 1e-4)

	jump := right.ThirdDeriv - left.ThirdDeriv
	assert.InDelta(t, force, real(jump)*m.BendingStiffness(), 1e-3*force)
	assert.InDelta(t, 0, imag(jump)*m.BendingStiffness(), 1e-3*force)
}
