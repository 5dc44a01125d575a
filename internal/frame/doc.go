// Package frame assembles members and constraints into the global wave system.
//
// A [Frame] owns an ordered list of members and an ordered list of constraints.
// For any angular frequency w it produces the square complex matrix A(w) whose
// columns are the amplitude unknowns of every member, in member-id order, and
// whose rows are the constraint equations, in constraint-id order, followed by
// the member continuity equations:
//
//	f := frame.New()
//	m0, _ := f.AddMember(props)
//	m1, _ := f.AddMember(props)
//	f.FixedEnd(m0.ID())
//	f.TwoMemberJoint(45, m0.ID(), m1.ID())
//	f.FreeEnd(m1.ID())
//	det, err := f.Determinant(2 * math.Pi * 10)
//
// Natural frequencies are the real zeros of det A(w). Point loads add a constant
// term to the system; [Frame.Response] solves the forced problem A·x = −c.
//
// Assembly never mutates the frame, so a completed frame can be evaluated from
// many goroutines at once.
package frame
