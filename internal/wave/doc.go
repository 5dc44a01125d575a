// Package wave provides the core primitives of the wave-propagation method for
// branched frames.
//
// Every member of a frame carries travelling and evanescent bending waves plus a
// longitudinal wave. Their complex amplitudes are the unknowns of the analysis:
//
//   - [Symbol]: one scalar amplitude unknown (member, station, direction, channel)
//   - [Vector]: the three channel amplitudes of one wave group
//   - [Equation]: a linear homogeneous relation between symbols
//   - [Block]: a matrix-vector product used to stack equations
//
// Members and constraints emit equations; the frame package turns them into the
// global coefficient matrix whose determinant vanishes at natural frequencies.
//
// # Example
//
//	rows := wave.Rows(wave.Mul(r, in), wave.Neg(out)) // R·in − out = 0
//
// # Thread Safety
//
// All types in this package are values; equations can be built concurrently.
package wave
