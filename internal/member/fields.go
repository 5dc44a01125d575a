package member

import (
	"fmt"

	"github.com/san-kum/branchwave/internal/wave"
)

// Fields are the physical quantities at one point of a member, in member-local
// axes: v is transverse displacement, u axial displacement.
type Fields struct {
	V          complex128
	Slope      complex128
	Curvature  complex128
	ThirdDeriv complex128
	U          complex128
	Strain     complex128
}

// Moment is the bending moment EI·v”.
func (f Fields) Moment(m *Member) complex128 {
	return complex(m.BendingStiffness(), 0) * f.Curvature
}

// Shear is the shear force −EI·v”'.
func (f Fields) Shear(m *Member) complex128 {
	return complex(-m.BendingStiffness(), 0) * f.ThirdDeriv
}

// AxialForce is EA·u'.
func (f Fields) AxialForce(m *Member) complex128 {
	return complex(m.AxialStiffness(), 0) * f.Strain
}

// Amplitudes resolves the value of each unknown symbol.
type Amplitudes interface {
	Amplitude(s wave.Symbol) complex128
}

// AmplitudeMap is an Amplitudes backed by a map. Missing symbols are zero.
type AmplitudeMap map[wave.Symbol]complex128

func (a AmplitudeMap) Amplitude(s wave.Symbol) complex128 { return a[s] }

// Waves returns the plus and minus amplitude vectors at near-end position x.
func (m *Member) Waves(w, x float64, amps Amplitudes) (plus, minus [wave.NumChannels]complex128, err error) {
	l := m.props.Length
	if x < -positionTolerance || x > l+positionTolerance {
		return plus, minus, fmt.Errorf("%w: position %g outside [0, %g]", wave.ErrValidation, x, l)
	}
	segs := m.segments()
	seg := segs[len(segs)-1]
	for _, s := range segs {
		if x < s.to {
			seg = s
			break
		}
	}

	d := m.propagation(w, x-seg.from)
	start := m.vector(seg.start, wave.Plus)
	back := m.vector(seg.start, wave.Minus)
	for c := 0; c < wave.NumChannels; c++ {
		plus[c] = d[c] * amps.Amplitude(start[c])
		minus[c] = amps.Amplitude(back[c]) / d[c]
	}
	return plus, minus, nil
}

// Fields evaluates displacement and its derivatives at near-end position x from
// the solved amplitudes.
func (m *Member) Fields(w, x float64, amps Amplitudes) (Fields, error) {
	p, n, err := m.Waves(w, x, amps)
	if err != nil {
		return Fields{}, err
	}
	k := complex(m.BendingWavenumber(w), 0)
	kappa := complex(m.AxialWavenumber(w), 0)
	b, e, l := wave.Bending, wave.Evanescent, wave.Longitudinal

	return Fields{
		V:          p[b] + p[e] + n[b] + n[e],
		Slope:      k * (-1i*p[b] - p[e] + 1i*n[b] + n[e]),
		Curvature:  k * k * (-p[b] + p[e] - n[b] + n[e]),
		ThirdDeriv: k * k * k * (1i*p[b] - p[e] - 1i*n[b] + n[e]),
		U:          p[l] + n[l],
		Strain:     1i * kappa * (-p[l] + n[l]),
	}, nil
}
