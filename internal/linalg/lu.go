// Package linalg provides the complex dense linear algebra used by frame assembly:
// LU determinants and solves on complex matrices, and eigen/singular-value queries
// answered through the real embedding of a complex matrix.
package linalg

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotSquare indicates a factorisation requested on a rectangular matrix.
	ErrNotSquare = errors.New("linalg: matrix is not square")

	// ErrSingular indicates a solve against an exactly or numerically singular matrix.
	ErrSingular = errors.New("linalg: matrix is singular")

	// ErrFactorization indicates that gonum failed to factorise the embedding.
	ErrFactorization = errors.New("linalg: factorization failed")
)

// singularThreshold is the pivot magnitude, relative to the largest entry, below
// which Solve refuses to divide.
const singularThreshold = 1e-14

// LU is a row-pivoted LU factorisation P·A = L·U of a complex square matrix,
// stored compactly in row-major order.
type LU struct {
	n     int
	lu    []complex128
	piv   []int
	sign  float64
	scale float64
}

// Factorize computes the LU factorisation of a.
func Factorize(a mat.CMatrix) (*LU, error) {
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, r, c)
	}
	n := r
	f := &LU{
		n:    n,
		lu:   make([]complex128, n*n),
		piv:  make([]int, n),
		sign: 1,
	}
	for i := 0; i < n; i++ {
		f.piv[i] = i
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			f.lu[i*n+j] = v
			if abs := cmplx.Abs(v); abs > f.scale {
				f.scale = abs
			}
		}
	}

	for k := 0; k < n; k++ {
		p := k
		best := cmplx.Abs(f.lu[k*n+k])
		for i := k + 1; i < n; i++ {
			if v := cmplx.Abs(f.lu[i*n+k]); v > best {
				best, p = v, i
			}
		}
		if p != k {
			f.swapRows(p, k)
			f.piv[p], f.piv[k] = f.piv[k], f.piv[p]
			f.sign = -f.sign
		}
		pivot := f.lu[k*n+k]
		if pivot == 0 {
			continue
		}
		for i := k + 1; i < n; i++ {
			l := f.lu[i*n+k] / pivot
			f.lu[i*n+k] = l
			if l == 0 {
				continue
			}
			for j := k + 1; j < n; j++ {
				f.lu[i*n+j] -= l * f.lu[k*n+j]
			}
		}
	}
	return f, nil
}

func (f *LU) swapRows(a, b int) {
	n := f.n
	ra := f.lu[a*n : a*n+n]
	rb := f.lu[b*n : b*n+n]
	for j := range ra {
		ra[j], rb[j] = rb[j], ra[j]
	}
}

// Det returns the determinant of the factorised matrix.
func (f *LU) Det() complex128 {
	d := complex(f.sign, 0)
	for i := 0; i < f.n; i++ {
		d *= f.lu[i*f.n+i]
	}
	return d
}

// Singular reports whether a pivot is negligible relative to the largest entry.
func (f *LU) Singular() bool {
	tol := singularThreshold * f.scale
	for i := 0; i < f.n; i++ {
		if cmplx.Abs(f.lu[i*f.n+i]) <= tol {
			return true
		}
	}
	return f.scale == 0
}

// Solve returns x with A·x = b.
func (f *LU) Solve(b []complex128) ([]complex128, error) {
	n := f.n
	if len(b) != n {
		return nil, fmt.Errorf("linalg: rhs length %d, want %d", len(b), n)
	}
	if f.Singular() {
		return nil, ErrSingular
	}
	x := make([]complex128, n)
	for i := 0; i < n; i++ {
		x[i] = b[f.piv[i]]
	}
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			x[i] -= f.lu[i*n+j] * x[j]
		}
	}
	for i := n - 1; i >= 0; i-- {
		for j := i + 1; j < n; j++ {
			x[i] -= f.lu[i*n+j] * x[j]
		}
		x[i] /= f.lu[i*n+i]
	}
	return x, nil
}

// Det returns det(a).
func Det(a mat.CMatrix) (complex128, error) {
	f, err := Factorize(a)
	if err != nil {
		return 0, err
	}
	return f.Det(), nil
}

// Solve returns x with a·x = b.
func Solve(a mat.CMatrix, b []complex128) ([]complex128, error) {
	f, err := Factorize(a)
	if err != nil {
		return nil, err
	}
	return f.Solve(b)
}

// SolveMatrix returns X with a·X = b, column by column.
func SolveMatrix(a, b mat.CMatrix) (*mat.CDense, error) {
	f, err := Factorize(a)
	if err != nil {
		return nil, err
	}
	rows, cols := b.Dims()
	if rows != f.n {
		return nil, fmt.Errorf("linalg: rhs has %d rows, want %d", rows, f.n)
	}
	x := mat.NewCDense(rows, cols, nil)
	col := make([]complex128, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			col[i] = b.At(i, j)
		}
		sol, err := f.Solve(col)
		if err != nil {
			return nil, err
		}
		for i, v := range sol {
			x.Set(i, j, v)
		}
	}
	return x, nil
}

// MaxAbs returns the largest entry modulus of a.
func MaxAbs(a mat.CMatrix) float64 {
	r, c := a.Dims()
	m := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m = math.Max(m, cmplx.Abs(a.At(i, j)))
		}
	}
	return m
}
