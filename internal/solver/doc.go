// Package solver locates natural frequencies of a frame.
//
// All searches work on the determinant of the assembled system as a function of
// frequency in hertz, det A(2π·f):
//
//   - [Solver.Sweep] samples it on a grid, in parallel
//   - [Solver.Newton] runs damped Newton-Raphson on |det|
//   - [Solver.Bisect] narrows a bracket over which both the real and the
//     imaginary part of det change sign
//   - [Solver.Scan] sweeps a range and bisects every bracket it finds
//
// Newton results are certified by the singular values of A: the smallest must be
// negligible relative to the largest, otherwise the search reports
// [wave.ErrNonConvergence]. A bracket with no root is not an error; Bisect
// returns a result with Found set to false.
package solver
