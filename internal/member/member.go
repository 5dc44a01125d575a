package member

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"github.com/san-kum/branchwave/internal/wave"
	"gonum.org/v1/gonum/mat"
)

// MaxConstraints is the number of constraints a member can carry, one per end.
const MaxConstraints = 2

// Properties are the physical inputs of a member, in SI units.
type Properties struct {
	Length        float64 `json:"length" yaml:"length" toml:"length"`
	Density       float64 `json:"density" yaml:"density" toml:"density"`
	YoungsModulus float64 `json:"youngs_modulus" yaml:"youngs_modulus" toml:"youngs_modulus"`
	Height        float64 `json:"height" yaml:"height" toml:"height"`
}

// Validate checks that every property is finite and strictly positive.
func (p Properties) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"length", p.Length},
		{"density", p.Density},
		{"youngs_modulus", p.YoungsModulus},
		{"height", p.Height},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %g", wave.ErrValidation, f.name, f.v)
		}
	}
	return nil
}

// End identifies which end of a member a constraint owns.
type End int

const (
	Near End = iota
	Far
)

func (e End) String() string {
	if e == Near {
		return "near"
	}
	return "far"
}

// Member is one straight frame member and its amplitude unknowns.
type Member struct {
	id    int
	props Properties

	area    float64
	inertia float64
	c       float64
	k       float64

	count       int
	constraints []int
	loads       []PointLoad
}

// New validates props and returns a member with no constraints attached.
func New(id int, props Properties) (*Member, error) {
	if err := props.Validate(); err != nil {
		return nil, fmt.Errorf("member %d: %w", id, err)
	}
	h := props.Height
	m := &Member{
		id:      id,
		props:   props,
		area:    h * h,
		inertia: h * h * h * h / 12,
	}
	m.c = math.Sqrt(props.YoungsModulus / props.Density)
	m.k = math.Sqrt(m.inertia / m.area)
	return m, nil
}

func (m *Member) ID() int                { return m.id }
func (m *Member) Properties() Properties { return m.props }
func (m *Member) Length() float64        { return m.props.Length }
func (m *Member) Area() float64          { return m.area }
func (m *Member) Inertia() float64       { return m.inertia }

// WaveSpeed is the bar wave speed C = sqrt(E/ρ).
func (m *Member) WaveSpeed() float64 { return m.c }

// RadiusOfGyration is K = sqrt(I/A).
func (m *Member) RadiusOfGyration() float64 { return m.k }

// BendingStiffness is E·I.
func (m *Member) BendingStiffness() float64 { return m.props.YoungsModulus * m.inertia }

// AxialStiffness is E·A.
func (m *Member) AxialStiffness() float64 { return m.props.YoungsModulus * m.area }

// Alpha is the non-dimensional bending wavenumber sqrt(w·K/C). Negative w is
// treated as |w|.
func (m *Member) Alpha(w float64) float64 {
	return math.Sqrt(math.Abs(w) * m.k / m.c)
}

// Beta is the non-dimensional longitudinal wavenumber w·K/C.
func (m *Member) Beta(w float64) float64 {
	return math.Abs(w) * m.k / m.c
}

// NonDimensionalFrequency is the bending wavenumber scaled by K.
func (m *Member) NonDimensionalFrequency(w float64) float64 {
	return m.Alpha(w)
}

// BendingWavenumber is k = α/K in rad/m.
func (m *Member) BendingWavenumber(w float64) float64 {
	return m.Alpha(w) / m.k
}

// AxialWavenumber is κ = β/K in rad/m.
func (m *Member) AxialWavenumber(w float64) float64 {
	return m.Beta(w) / m.k
}

// PropagationMatrix returns diag(e^{-iαL̄}, e^{-αL̄}, e^{-iβL̄}) with L̄ = length/K,
// advancing plus-going amplitudes by length. A new matrix is returned per call.
func (m *Member) PropagationMatrix(w, length float64) *mat.CDense {
	d := m.propagation(w, length)
	p := mat.NewCDense(wave.NumChannels, wave.NumChannels, nil)
	for i, v := range d {
		p.Set(i, i, v)
	}
	return p
}

func (m *Member) propagation(w, length float64) [wave.NumChannels]complex128 {
	lbar := length / m.k
	a := m.Alpha(w) * lbar
	b := m.Beta(w) * lbar
	return [wave.NumChannels]complex128{
		cmplx.Exp(complex(0, -a)),
		complex(math.Exp(-a), 0),
		cmplx.Exp(complex(0, -b)),
	}
}

// CheckConstraintCount reports whether another constraint can be attached.
func (m *Member) CheckConstraintCount() bool {
	return m.count < MaxConstraints
}

// IncrementConstraintCount records one more attached constraint.
func (m *Member) IncrementConstraintCount() error {
	if !m.CheckConstraintCount() {
		return fmt.Errorf("member %d: %w", m.id, wave.ErrOverConstrained)
	}
	m.count++
	return nil
}

// AddConstraint records the id of an attached constraint.
func (m *Member) AddConstraint(id int) error {
	if len(m.constraints) >= MaxConstraints {
		return fmt.Errorf("member %d: %w", m.id, wave.ErrOverConstrained)
	}
	if slices.Contains(m.constraints, id) {
		return fmt.Errorf("%w: member %d already carries constraint %d", wave.ErrValidation, m.id, id)
	}
	m.constraints = append(m.constraints, id)
	return nil
}

// Attach checks the constraint count, then records id. Either both happen or neither.
func (m *Member) Attach(id int) error {
	if !m.CheckConstraintCount() {
		return &wave.ConstraintError{Constraint: id, Member: m.id, Wrapped: wave.ErrOverConstrained}
	}
	if err := m.AddConstraint(id); err != nil {
		return err
	}
	return m.IncrementConstraintCount()
}

// Constraints returns the attached constraint ids in ascending order.
func (m *Member) Constraints() []int {
	out := slices.Clone(m.constraints)
	slices.Sort(out)
	return out
}

// ConstraintCount is the number of attached constraints.
func (m *Member) ConstraintCount() int { return m.count }

// End reports which end the constraint owns. The lower of the attached ids owns
// the near end.
func (m *Member) End(constraintID int) (End, error) {
	if !slices.Contains(m.constraints, constraintID) {
		return Near, &wave.ConstraintError{Constraint: constraintID, Member: m.id, Wrapped: wave.ErrUnknownConstraint}
	}
	for _, other := range m.constraints {
		if other < constraintID {
			return Far, nil
		}
	}
	return Near, nil
}

// LocalPosition converts a distance measured from the end owned by constraintID
// into a distance from the near end.
func (m *Member) LocalPosition(constraintID int, x float64) (float64, error) {
	end, err := m.End(constraintID)
	if err != nil {
		return 0, err
	}
	if end == Far {
		return m.props.Length - x, nil
	}
	return x, nil
}

func (m *Member) vector(station string, dir wave.Direction) wave.Vector {
	return wave.NewVector(m.id, station, dir)
}

// Parameters returns the (incoming, outgoing) amplitude vectors at the end owned by
// constraintID. Incoming waves travel into the constraint. At the near end that
// is (a⁻, a⁺), at the far end (b⁺, b⁻).
func (m *Member) Parameters(constraintID int) (incoming, outgoing wave.Vector, err error) {
	end, err := m.End(constraintID)
	if err != nil {
		return incoming, outgoing, err
	}
	if end == Near {
		return m.vector("a", wave.Minus), m.vector("a", wave.Plus), nil
	}
	return m.vector("b", wave.Plus), m.vector("b", wave.Minus), nil
}

// Symbols returns the member's unknowns in assembly order:
// a⁺, a⁻, then g⁺, g⁻, h⁺, h⁻ per point load by ascending position, then b⁺, b⁻.
func (m *Member) Symbols() []wave.Symbol {
	out := make([]wave.Symbol, 0, (4+4*len(m.loads))*wave.NumChannels)
	add := func(station string) {
		out = append(out, m.vector(station, wave.Plus).Symbols()...)
		out = append(out, m.vector(station, wave.Minus).Symbols()...)
	}
	add("a")
	for i := range m.loads {
		add(loadStation("g", i))
		add(loadStation("h", i))
	}
	add("b")
	return out
}

// Equations returns the member's continuity rows, b⁺ − P·a⁺ = 0 and a⁻ − P·b⁻ = 0,
// written per segment when point loads split the member, followed by the jump
// conditions at each load.
func (m *Member) Equations(w float64) []wave.Equation {
	segs := m.segments()
	eqs := make([]wave.Equation, 0, (2*len(segs)+2*len(m.loads))*wave.NumChannels)
	for _, s := range segs {
		p := m.PropagationMatrix(w, s.length())
		eqs = append(eqs, wave.Rows(wave.Mul(nil, m.vector(s.end, wave.Plus)), wave.Scaled(-1, p, m.vector(s.start, wave.Plus)))...)
		eqs = append(eqs, wave.Rows(wave.Mul(nil, m.vector(s.start, wave.Minus)), wave.Scaled(-1, p, m.vector(s.end, wave.Minus)))...)
	}
	for i, l := range m.loads {
		eqs = append(eqs, m.jump(w, i, l)...)
	}
	return eqs
}
