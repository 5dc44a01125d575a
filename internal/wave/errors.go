package wave

import (
	"errors"
	"fmt"
)

// Domain errors for frame construction, assembly and solving.
var (
	// ErrValidation indicates a non-positive or non-finite physical parameter.
	ErrValidation = errors.New("wave: invalid physical parameter")

	// ErrOverConstrained indicates a third constraint attached to a member.
	ErrOverConstrained = errors.New("wave: member already has 2 constraints")

	// ErrDimensionMismatch indicates an assembled matrix that is not square.
	ErrDimensionMismatch = errors.New("wave: equation count does not match parameter count")

	// ErrNotNaturalFrequency indicates the smallest eigenvalue is not close to zero.
	ErrNotNaturalFrequency = errors.New("wave: frequency is not a natural frequency")

	// ErrNonConvergence indicates a root search that did not reach a certified root.
	ErrNonConvergence = errors.New("wave: root search did not converge")

	// ErrUnknownMember indicates a reference to a member id that does not exist.
	ErrUnknownMember = errors.New("wave: unknown member")

	// ErrUnknownConstraint indicates a constraint id not attached to the member.
	ErrUnknownConstraint = errors.New("wave: constraint not attached to member")

	// ErrNotLinear indicates an equation term on a symbol outside the parameter list.
	ErrNotLinear = errors.New("wave: equation is not linear in the frame parameters")
)

// ConstraintError wraps an error with the constraint and member it concerns.
type ConstraintError struct {
	Constraint int
	Member     int
	Wrapped    error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint %d on member %d: %v", e.Constraint, e.Member, e.Wrapped)
}

func (e *ConstraintError) Unwrap() error {
	return e.Wrapped
}
