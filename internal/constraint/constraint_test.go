package constraint

import (
	"math"
	"testing"

	"github.com/san-kum/branchwave/internal/member"
	"github.com/san-kum/branchwave/internal/physics"
	"github.com/san-kum/branchwave/internal/wave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var steel = member.Properties{Length: 0.5, Density: 7800, YoungsModulus: 206e9, Height: 1.27e-2}

func members(t *testing.T, n int) []*member.Member {
	t.Helper()
	out := make([]*member.Member, n)
	for i := range out {
		m, err := member.New(i, steel)
		require.NoError(t, err)
		out[i] = m
	}
	return out
}

func TestBoundaryEquations(t *testing.T) {
	table := physics.NewTable()
	ms := members(t, 1)

	fixed, err := NewFixed(0, ms[0], table)
	require.NoError(t, err)
	free, err := NewFree(1, ms[0], table)
	require.NoError(t, err)

	w := 2 * math.Pi * 40
	eqs, err := fixed.Equations(w)
	require.NoError(t, err)
	require.Len(t, eqs, wave.NumChannels)

	// near end: R·a⁻ − a⁺ = 0
	aMinus := wave.NewVector(0, "a", wave.Minus)
	aPlus := wave.NewVector(0, "a", wave.Plus)
	assert.Equal(t, complex128(-1i), eqs[0].Coefficient(aMinus[0]))
	assert.Equal(t, complex128(-1-1i), eqs[0].Coefficient(aMinus[1]))
	assert.Equal(t, complex128(-1), eqs[0].Coefficient(aPlus[0]))
	assert.Equal(t, complex128(-1), eqs[2].Coefficient(aMinus[2]))

	// far end: R·b⁺ − b⁻ = 0
	eqs, err = free.Equations(w)
	require.NoError(t, err)
	bPlus := wave.NewVector(0, "b", wave.Plus)
	bMinus := wave.NewVector(0, "b", wave.Minus)
	assert.Equal(t, complex128(1-1i), eqs[1].Coefficient(bPlus[0]))
	assert.Equal(t, complex128(-1), eqs[1].Coefficient(bMinus[1]))
	assert.Zero(t, eqs[1].Coefficient(aPlus[1]))
}

func TestOverConstrained(t *testing.T) {
	table := physics.NewTable()
	ms := members(t, 2)

	_, err := NewFixed(0, ms[0], table)
	require.NoError(t, err)
	_, err = NewFree(1, ms[0], table)
	require.NoError(t, err)

	_, err = NewFree(2, ms[0], table)
	require.ErrorIs(t, err, wave.ErrOverConstrained)

	// a failed joint leaves the healthy member untouched
	_, err = NewTwoMemberJoint(3, 0, ms[1], ms[0], table)
	require.ErrorIs(t, err, wave.ErrOverConstrained)
	assert.Equal(t, 0, ms[1].ConstraintCount())

	_, err = NewTwoMemberJoint(4, 0, ms[1], ms[1], table)
	require.ErrorIs(t, err, wave.ErrValidation)
}

func TestJointAngleInRadians(t *testing.T) {
	ms := members(t, 2)
	j, err := NewTwoMemberJoint(0, 45, ms[0], ms[1], physics.NewTable())
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/4, j.Theta, 1e-15)
	assert.Equal(t, []int{0, 1}, j.MemberIDs())
}

func TestJointOrientationSign(t *testing.T) {
	table := physics.NewTable()
	w := 2 * math.Pi * 60

	tests := []struct {
		name  string
		setup func(ms []*member.Member) (*Constraint, error)
		sign  complex128
	}{
		{
			// member 0 far end, member 1 near end
			name: "canonical",
			setup: func(ms []*member.Member) (*Constraint, error) {
				if _, err := NewFixed(0, ms[0], table); err != nil {
					return nil, err
				}
				return NewTwoMemberJoint(1, 30, ms[0], ms[1], table)
			},
			sign: 1,
		},
		{
			// member 0 far end, member 1 far end
			name: "second reversed",
			setup: func(ms []*member.Member) (*Constraint, error) {
				if _, err := NewFixed(0, ms[0], table); err != nil {
					return nil, err
				}
				if _, err := NewFree(1, ms[1], table); err != nil {
					return nil, err
				}
				return NewTwoMemberJoint(2, 30, ms[0], ms[1], table)
			},
			sign: -1,
		},
		{
			// member 0 near end, member 1 far end
			name: "both reversed",
			setup: func(ms []*member.Member) (*Constraint, error) {
				if _, err := NewFree(0, ms[1], table); err != nil {
					return nil, err
				}
				return NewTwoMemberJoint(1, 30, ms[0], ms[1], table)
			},
			sign: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := members(t, 2)
			j, err := tt.setup(ms)
			require.NoError(t, err)

			jm, err := table.Joint(physics.TwoMemberJoint, j.Theta, physics.ParamsOf(ms[0]), physics.ParamsOf(ms[1]), w)
			require.NoError(t, err)

			eqs, err := j.Equations(w)
			require.NoError(t, err)
			require.Len(t, eqs, 2*wave.NumChannels)

			in1, _, err := ms[0].Parameters(j.ID)
			require.NoError(t, err)
			in2, out2, err := ms[1].Parameters(j.ID)
			require.NoError(t, err)

			assert.Equal(t, jm.R11.At(0, 0), eqs[0].Coefficient(in1[0]))
			assert.Equal(t, tt.sign*jm.T21.At(0, 2), eqs[0].Coefficient(in2[2]))
			assert.Equal(t, tt.sign*jm.T12.At(1, 0), eqs[4].Coefficient(in1[0]))
			assert.Equal(t, jm.R22.At(1, 1), eqs[4].Coefficient(in2[1]))
			assert.Equal(t, complex128(-1), eqs[4].Coefficient(out2[1]))

			blocks, err := j.Matrices(w)
			require.NoError(t, err)
			require.Len(t, blocks, 4)
			assert.Equal(t, tt.sign*jm.T21.At(0, 2), blocks[1].At(0, 2))
		})
	}
}

func TestJointAtRestFails(t *testing.T) {
	ms := members(t, 2)
	j, err := NewTwoMemberJoint(0, 10, ms[0], ms[1], physics.NewTable())
	require.NoError(t, err)
	_, err = j.Equations(0)
	require.ErrorIs(t, err, physics.ErrSingularJoint)
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{Free, Fixed, TwoMemberJoint} {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var back Kind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}
	_, err := ParseKind("hinge")
	require.ErrorIs(t, err, physics.ErrUnknownKind)
}
