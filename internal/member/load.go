package member

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/san-kum/branchwave/internal/wave"
	"gonum.org/v1/gonum/floats/scalar"
)

// positionTolerance is the distance below which two load positions coincide.
const positionTolerance = 1e-9

// PointLoad is a harmonic transverse force of amplitude Force applied at Position,
// measured from the near end.
type PointLoad struct {
	Force    float64
	Position float64
}

// segment is a stretch of member between two stations.
type segment struct {
	start, end string
	from, to   float64
}

func (s segment) length() float64 { return s.to - s.from }

func loadStation(prefix string, i int) string {
	return prefix + strconv.Itoa(i)
}

// AddPointLoad adds a transverse force at distance x from the end owned by
// constraintID. Loads are kept sorted by near-end position, so station names of
// existing loads may shift.
func (m *Member) AddPointLoad(constraintID int, force, x float64) error {
	if math.IsNaN(force) || math.IsInf(force, 0) {
		return fmt.Errorf("%w: force must be finite, got %g", wave.ErrValidation, force)
	}
	if !(x > 0 && x < m.props.Length) {
		return fmt.Errorf("%w: load position %g outside (0, %g)", wave.ErrValidation, x, m.props.Length)
	}
	local, err := m.LocalPosition(constraintID, x)
	if err != nil {
		return err
	}
	for _, l := range m.loads {
		if scalar.EqualWithinAbs(l.Position, local, positionTolerance) {
			return fmt.Errorf("%w: member %d already has a load at %g", wave.ErrValidation, m.id, local)
		}
	}

	m.loads = append(m.loads, PointLoad{Force: force, Position: local})
	slices.SortFunc(m.loads, func(a, b PointLoad) int {
		switch {
		case a.Position < b.Position:
			return -1
		case a.Position > b.Position:
			return 1
		}
		return 0
	})
	return nil
}

// Loads returns the point loads sorted by near-end position.
func (m *Member) Loads() []PointLoad {
	return slices.Clone(m.loads)
}

func (m *Member) segments() []segment {
	segs := make([]segment, 0, len(m.loads)+1)
	start, from := "a", 0.0
	for i, l := range m.loads {
		segs = append(segs, segment{start: start, end: loadStation("g", i), from: from, to: l.Position})
		start, from = loadStation("h", i), l.Position
	}
	return append(segs, segment{start: start, end: "b", from: from, to: m.props.Length})
}

// Source returns the wave amplitudes radiated in each direction by a unit of force
// F at frequency w: F·(−i, −1, 0)/(4·EI·k³).
func (m *Member) Source(w, force float64) [wave.NumChannels]complex128 {
	k := m.BendingWavenumber(w)
	d := 4 * m.BendingStiffness() * k * k * k
	if d == 0 {
		return [wave.NumChannels]complex128{}
	}
	return [wave.NumChannels]complex128{
		complex(0, -force/d),
		complex(-force/d, 0),
		0,
	}
}

// jump returns h⁺ − g⁺ − s = 0 and g⁻ − h⁻ − s = 0 for load i.
func (m *Member) jump(w float64, i int, l PointLoad) []wave.Equation {
	s := m.Source(w, l.Force)
	var neg [wave.NumChannels]complex128
	for c := range s {
		neg[c] = -s[c]
	}
	g, h := loadStation("g", i), loadStation("h", i)

	eqs := wave.WithConstant(wave.Rows(wave.Mul(nil, m.vector(h, wave.Plus)), wave.Neg(m.vector(g, wave.Plus))), neg)
	return append(eqs, wave.WithConstant(wave.Rows(wave.Mul(nil, m.vector(g, wave.Minus)), wave.Neg(m.vector(h, wave.Minus))), neg)...)
}
