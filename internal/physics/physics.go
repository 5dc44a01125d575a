package physics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUnknownKind indicates a constraint kind the provider has no entry for.
	ErrUnknownKind = errors.New("physics: unknown constraint kind")

	// ErrSingularJoint indicates joint conditions that cannot be solved for the
	// outgoing waves, as at zero frequency.
	ErrSingularJoint = errors.New("physics: singular joint conditions")
)

// Kind names an entry of the physics table.
type Kind string

const (
	Free           Kind = "free"
	Fixed          Kind = "fixed"
	TwoMemberJoint Kind = "two_member_joint"
)

// Params are the physical parameters of a member the tables are specialised with.
type Params struct {
	BendingStiffness float64
	AxialStiffness   float64
	WaveSpeed        float64
	RadiusOfGyration float64
}

// Beam is the view of a member the physics table needs.
type Beam interface {
	BendingStiffness() float64
	AxialStiffness() float64
	WaveSpeed() float64
	RadiusOfGyration() float64
}

// ParamsOf extracts the table parameters of a member.
func ParamsOf(b Beam) Params {
	return Params{
		BendingStiffness: b.BendingStiffness(),
		AxialStiffness:   b.AxialStiffness(),
		WaveSpeed:        b.WaveSpeed(),
		RadiusOfGyration: b.RadiusOfGyration(),
	}
}

// Wavenumbers returns the bending and axial wavenumbers at angular frequency w.
func (p Params) Wavenumbers(w float64) (bending, axial float64) {
	w = math.Abs(w)
	return math.Sqrt(w / (p.WaveSpeed * p.RadiusOfGyration)), w / p.WaveSpeed
}

// JointMatrices are the reflection and transmission blocks of a two-member joint.
// T12 carries member 1's incoming waves into member 2's outgoing waves.
type JointMatrices struct {
	R11, R22 *mat.CDense
	T12, T21 *mat.CDense
}

// Provider supplies reflection and transmission matrices for constraints.
type Provider interface {
	Reflection(kind Kind, p Params, w float64) (*mat.CDense, error)
	Joint(kind Kind, theta float64, p1, p2 Params, w float64) (JointMatrices, error)
}

// Table is the built-in Provider.
type Table struct {
	reflections map[Kind][]complex128
	joints      map[Kind]conditionFunc
}

// NewTable builds the table once. The boundary matrices act on
// [bending, evanescent, longitudinal] amplitudes:
//
//	free:  zero moment, shear and axial force
//	fixed: zero displacement, slope and axial displacement
func NewTable() *Table {
	return &Table{
		reflections: map[Kind][]complex128{
			Free: {
				-1i, 1 + 1i, 0,
				1 - 1i, 1i, 0,
				0, 0, 1,
			},
			Fixed: {
				-1i, -1 - 1i, 0,
				-1 + 1i, 1i, 0,
				0, 0, -1,
			},
		},
		joints: map[Kind]conditionFunc{
			TwoMemberJoint: rigidJoint,
		},
	}
}

// Reflection returns a fresh copy of the reflection matrix of kind. Ends of a
// uniform beam reflect independently of its parameters and frequency.
func (t *Table) Reflection(kind Kind, _ Params, _ float64) (*mat.CDense, error) {
	r, ok := t.reflections[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	data := make([]complex128, len(r))
	copy(data, r)
	return mat.NewCDense(3, 3, data), nil
}

// Joint substitutes the member parameters into the condition rows of kind and
// solves them for the scattering blocks.
func (t *Table) Joint(kind Kind, theta float64, p1, p2 Params, w float64) (JointMatrices, error) {
	cond, ok := t.joints[kind]
	if !ok {
		return JointMatrices{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	out, in := cond(theta, p1, p2, w)
	return scatter(out, in)
}
