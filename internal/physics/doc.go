// Package physics provides the reflection and transmission relations consumed by
// frame constraints.
//
// A [Provider] returns, for a constraint kind and the physical parameters of the
// member(s) it touches, the matrices mapping incoming wave amplitudes to outgoing
// ones:
//
//   - [Free], [Fixed]: one 3×3 reflection matrix R with out = R·in
//   - [TwoMemberJoint]: [JointMatrices] with
//     out₁ = R11·in₁ + T21·in₂ and out₂ = T12·in₁ + R22·in₂
//
// [Table] is the built-in provider. Boundary reflections are constant matrices. A
// rigid joint is stored as closed-form condition rows (displacement continuity in
// both plane directions, rotation continuity, force balance in both plane
// directions and moment balance), substituted with the member parameters and
// solved for the scattering matrix on each query.
//
// # Joint orientation
//
// Member 1 enters the joint with its axis pointing into it, member 2 leaves it.
// The joint angle θ turns member 2's axis counter-clockwise from member 1's; θ = 0
// is a straight continuation.
//
// # Thread Safety
//
// A Table is immutable after [NewTable] and safe for concurrent use.
package physics
