// Package constraint implements the boundary conditions and joints that couple
// member wave amplitudes.
package constraint

import (
	"fmt"
	"math"

	"github.com/san-kum/branchwave/internal/member"
	"github.com/san-kum/branchwave/internal/physics"
	"github.com/san-kum/branchwave/internal/wave"
	"gonum.org/v1/gonum/mat"
)

// Kind tags the constraint variant.
type Kind int

const (
	Free Kind = iota
	Fixed
	TwoMemberJoint
)

func (k Kind) String() string {
	switch k {
	case Free:
		return "free"
	case Fixed:
		return "fixed"
	case TwoMemberJoint:
		return "joint"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps "free", "fixed" or "joint" to a Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range []Kind{Free, Fixed, TwoMemberJoint} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", physics.ErrUnknownKind, name)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k Kind) table() physics.Kind {
	switch k {
	case Free:
		return physics.Free
	case Fixed:
		return physics.Fixed
	}
	return physics.TwoMemberJoint
}

// Constraint is a boundary condition on one member end or a rigid joint between
// two member ends.
type Constraint struct {
	ID      int
	Kind    Kind
	Members []*member.Member
	// Theta is the joint angle in radians.
	Theta float64

	provider physics.Provider
}

// NewFree attaches a free end to m.
func NewFree(id int, m *member.Member, provider physics.Provider) (*Constraint, error) {
	return newBoundary(id, Free, m, provider)
}

// NewFixed attaches a clamped end to m.
func NewFixed(id int, m *member.Member, provider physics.Provider) (*Constraint, error) {
	return newBoundary(id, Fixed, m, provider)
}

func newBoundary(id int, kind Kind, m *member.Member, provider physics.Provider) (*Constraint, error) {
	if err := m.Attach(id); err != nil {
		return nil, err
	}
	return &Constraint{ID: id, Kind: kind, Members: []*member.Member{m}, provider: provider}, nil
}

// NewTwoMemberJoint joins m1 and m2 at thetaDeg degrees. Neither member is
// modified when either cannot take another constraint.
func NewTwoMemberJoint(id int, thetaDeg float64, m1, m2 *member.Member, provider physics.Provider) (*Constraint, error) {
	if math.IsNaN(thetaDeg) || math.IsInf(thetaDeg, 0) {
		return nil, fmt.Errorf("%w: joint angle %g", wave.ErrValidation, thetaDeg)
	}
	if m1 == m2 {
		return nil, fmt.Errorf("%w: joint %d connects member %d to itself", wave.ErrValidation, id, m1.ID())
	}
	for _, m := range []*member.Member{m1, m2} {
		if !m.CheckConstraintCount() {
			return nil, &wave.ConstraintError{Constraint: id, Member: m.ID(), Wrapped: wave.ErrOverConstrained}
		}
	}
	if err := m1.Attach(id); err != nil {
		return nil, err
	}
	if err := m2.Attach(id); err != nil {
		return nil, err
	}
	return &Constraint{
		ID:       id,
		Kind:     TwoMemberJoint,
		Members:  []*member.Member{m1, m2},
		Theta:    thetaDeg * math.Pi / 180,
		provider: provider,
	}, nil
}

// MemberIDs returns the ids of the constrained members.
func (c *Constraint) MemberIDs() []int {
	ids := make([]int, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.ID()
	}
	return ids
}

// Equations returns the rows coupling the constrained amplitudes at angular
// frequency w.
func (c *Constraint) Equations(w float64) ([]wave.Equation, error) {
	var (
		eqs []wave.Equation
		err error
	)
	if c.Kind == TwoMemberJoint {
		eqs, err = c.jointEquations(w)
	} else {
		eqs, err = c.boundaryEquations(w)
	}
	if err != nil {
		return nil, fmt.Errorf("constraint %d (%s): %w", c.ID, c.Kind, err)
	}
	return eqs, nil
}

// boundaryEquations states R·in − out = 0.
func (c *Constraint) boundaryEquations(w float64) ([]wave.Equation, error) {
	m := c.Members[0]
	in, out, err := m.Parameters(c.ID)
	if err != nil {
		return nil, err
	}
	r, err := c.provider.Reflection(c.Kind.table(), physics.ParamsOf(m), w)
	if err != nil {
		return nil, err
	}
	return wave.Rows(wave.Mul(r, in), wave.Neg(out)), nil
}

// jointEquations states R11·in₁ + T21·in₂ − out₁ = 0 and T12·in₁ + R22·in₂ − out₂ = 0.
// The table assumes member 1 joined by its far end and member 2 by its near end;
// each member joined the other way round flips the sign of the transmission.
func (c *Constraint) jointEquations(w float64) ([]wave.Equation, error) {
	m1, m2 := c.Members[0], c.Members[1]
	in1, out1, err := m1.Parameters(c.ID)
	if err != nil {
		return nil, err
	}
	in2, out2, err := m2.Parameters(c.ID)
	if err != nil {
		return nil, err
	}
	sign, err := c.orientation()
	if err != nil {
		return nil, err
	}

	jm, err := c.provider.Joint(c.Kind.table(), c.Theta, physics.ParamsOf(m1), physics.ParamsOf(m2), w)
	if err != nil {
		return nil, err
	}
	eqs := wave.Rows(wave.Mul(jm.R11, in1), wave.Scaled(sign, jm.T21, in2), wave.Neg(out1))
	return append(eqs, wave.Rows(wave.Scaled(sign, jm.T12, in1), wave.Mul(jm.R22, in2), wave.Neg(out2))...), nil
}

func (c *Constraint) orientation() (complex128, error) {
	e1, err := c.Members[0].End(c.ID)
	if err != nil {
		return 0, err
	}
	e2, err := c.Members[1].End(c.ID)
	if err != nil {
		return 0, err
	}
	sign := complex128(1)
	if e1 == member.Near {
		sign = -sign
	}
	if e2 == member.Far {
		sign = -sign
	}
	return sign, nil
}

// Matrices returns the reflection matrix of a boundary, or the four joint blocks
// in the order R11, T21, T12, R22 with orientation signs applied.
func (c *Constraint) Matrices(w float64) ([]*mat.CDense, error) {
	if c.Kind != TwoMemberJoint {
		r, err := c.provider.Reflection(c.Kind.table(), physics.ParamsOf(c.Members[0]), w)
		if err != nil {
			return nil, err
		}
		return []*mat.CDense{r}, nil
	}
	sign, err := c.orientation()
	if err != nil {
		return nil, err
	}
	jm, err := c.provider.Joint(c.Kind.table(), c.Theta, physics.ParamsOf(c.Members[0]), physics.ParamsOf(c.Members[1]), w)
	if err != nil {
		return nil, err
	}
	scale(jm.T21, sign)
	scale(jm.T12, sign)
	return []*mat.CDense{jm.R11, jm.T21, jm.T12, jm.R22}, nil
}

func scale(m *mat.CDense, f complex128) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, f*m.At(i, j))
		}
	}
}
