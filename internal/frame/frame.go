package frame

import (
	"fmt"

	"github.com/san-kum/branchwave/internal/constraint"
	"github.com/san-kum/branchwave/internal/diag"
	"github.com/san-kum/branchwave/internal/member"
	"github.com/san-kum/branchwave/internal/physics"
	"github.com/san-kum/branchwave/internal/wave"
)

// State is the construction stage of a frame.
type State int

const (
	Empty State = iota
	MembersAdded
	ConstraintsAdded
	Complete
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case MembersAdded:
		return "members added"
	case ConstraintsAdded:
		return "constraints added"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Option configures a Frame.
type Option func(*Frame)

// WithProvider sets the physics table. The default is physics.NewTable().
func WithProvider(p physics.Provider) Option {
	return func(f *Frame) {
		f.provider = p
	}
}

// WithSink sets the diagnostic sink. The default discards everything.
func WithSink(s diag.Sink) Option {
	return func(f *Frame) {
		f.sink = s
	}
}

// WithMetrics counts assemblies and determinant evaluations.
func WithMetrics(m *diag.Metrics) Option {
	return func(f *Frame) {
		f.metrics = m
	}
}

// Frame is a structure of members joined by constraints.
type Frame struct {
	members     []*member.Member
	constraints []*constraint.Constraint

	provider physics.Provider
	sink     diag.Sink
	metrics  *diag.Metrics
}

// New returns an empty frame.
func New(opts ...Option) *Frame {
	f := &Frame{
		provider: physics.NewTable(),
		sink:     diag.Nop{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Sink returns the frame's diagnostic sink.
func (f *Frame) Sink() diag.Sink { return f.sink }

// Metrics returns the frame's metrics, possibly nil.
func (f *Frame) Metrics() *diag.Metrics { return f.metrics }

// AddMember appends a member. Ids follow creation order from 0.
func (f *Frame) AddMember(p member.Properties) (*member.Member, error) {
	m, err := member.New(len(f.members), p)
	if err != nil {
		return nil, err
	}
	f.members = append(f.members, m)
	f.sink.Debugf("member %d: L=%g h=%g E=%g rho=%g", m.ID(), p.Length, p.Height, p.YoungsModulus, p.Density)
	return m, nil
}

// Member returns the member with the given id.
func (f *Frame) Member(id int) (*member.Member, error) {
	if id < 0 || id >= len(f.members) {
		return nil, fmt.Errorf("%w: %d", wave.ErrUnknownMember, id)
	}
	return f.members[id], nil
}

// Members returns the members in id order.
func (f *Frame) Members() []*member.Member {
	out := make([]*member.Member, len(f.members))
	copy(out, f.members)
	return out
}

// Constraint returns the constraint with the given id.
func (f *Frame) Constraint(id int) (*constraint.Constraint, error) {
	if id < 0 || id >= len(f.constraints) {
		return nil, fmt.Errorf("%w: %d", wave.ErrUnknownConstraint, id)
	}
	return f.constraints[id], nil
}

// Constraints returns the constraints in id order.
func (f *Frame) Constraints() []*constraint.Constraint {
	out := make([]*constraint.Constraint, len(f.constraints))
	copy(out, f.constraints)
	return out
}

// nextID is the id the next successful constraint receives.
func (f *Frame) nextID() int { return len(f.constraints) }

func (f *Frame) register(c *constraint.Constraint, err error) (*constraint.Constraint, error) {
	if err != nil {
		return nil, err
	}
	f.constraints = append(f.constraints, c)
	f.sink.Debugf("constraint %d: %s on members %v", c.ID, c.Kind, c.MemberIDs())
	return c, nil
}

// FreeEnd attaches a free end to the member.
func (f *Frame) FreeEnd(memberID int) (*constraint.Constraint, error) {
	m, err := f.Member(memberID)
	if err != nil {
		return nil, err
	}
	return f.register(constraint.NewFree(f.nextID(), m, f.provider))
}

// FixedEnd attaches a clamped end to the member.
func (f *Frame) FixedEnd(memberID int) (*constraint.Constraint, error) {
	m, err := f.Member(memberID)
	if err != nil {
		return nil, err
	}
	return f.register(constraint.NewFixed(f.nextID(), m, f.provider))
}

// TwoMemberJoint rigidly joins two members at thetaDeg degrees.
func (f *Frame) TwoMemberJoint(thetaDeg float64, member1, member2 int) (*constraint.Constraint, error) {
	m1, err := f.Member(member1)
	if err != nil {
		return nil, err
	}
	m2, err := f.Member(member2)
	if err != nil {
		return nil, err
	}
	return f.register(constraint.NewTwoMemberJoint(f.nextID(), thetaDeg, m1, m2, f.provider))
}

// AddPointLoad applies a transverse force to a member at distance x from the end
// owned by constraintID.
func (f *Frame) AddPointLoad(memberID, constraintID int, force, x float64) error {
	m, err := f.Member(memberID)
	if err != nil {
		return err
	}
	if err := m.AddPointLoad(constraintID, force, x); err != nil {
		return err
	}
	f.sink.Debugf("load %g N on member %d at %g from constraint %d", force, memberID, x, constraintID)
	return nil
}

// State reports the construction stage.
func (f *Frame) State() State {
	switch {
	case len(f.members) == 0:
		return Empty
	case len(f.constraints) == 0:
		return MembersAdded
	}
	for _, m := range f.members {
		if m.ConstraintCount() != member.MaxConstraints {
			return ConstraintsAdded
		}
	}
	return Complete
}

// Params returns every amplitude unknown in column order.
func (f *Frame) Params() []wave.Symbol {
	var out []wave.Symbol
	for _, m := range f.members {
		out = append(out, m.Symbols()...)
	}
	return out
}

// Forced reports whether any member carries a point load.
func (f *Frame) Forced() bool {
	for _, m := range f.members {
		if len(m.Loads()) > 0 {
			return true
		}
	}
	return false
}
