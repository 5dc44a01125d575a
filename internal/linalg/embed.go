package linalg

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Embed returns the real 2n×2m matrix [[Re A, −Im A], [Im A, Re A]], which acts on
// [Re x; Im x] the way A acts on x.
func Embed(a mat.CMatrix) *mat.Dense {
	r, c := a.Dims()
	m := mat.NewDense(2*r, 2*c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := a.At(i, j)
			re, im := real(v), imag(v)
			m.Set(i, j, re)
			m.Set(i, j+c, -im)
			m.Set(i+r, j, im)
			m.Set(i+r, j+c, re)
		}
	}
	return m
}

// Eigenpair is the eigenvalue of smallest modulus of a complex matrix with its
// eigenvector, plus the largest eigenvalue modulus for relative tolerances.
type Eigenpair struct {
	Value  complex128
	Vector []complex128
	MaxAbs float64
}

// SmallestEigen returns the eigenvalue of smallest modulus of a and a matching
// eigenvector normalised so that its largest component equals 1.
//
// The eigen decomposition runs on the real embedding. Its spectrum is the spectrum
// of A together with its conjugate; an embedding eigenvector [a; b] splits into
// z = (a + ib)/2 with A·z = λz and w = (a − ib)/2 with A·conj(w) = conj(λ)·conj(w).
func SmallestEigen(a mat.CMatrix) (Eigenpair, error) {
	r, c := a.Dims()
	if r != c {
		return Eigenpair{}, fmt.Errorf("%w: %dx%d", ErrNotSquare, r, c)
	}
	n := r

	var eig mat.Eigen
	if ok := eig.Factorize(Embed(a), mat.EigenRight); !ok {
		return Eigenpair{}, ErrFactorization
	}
	vals := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	idx := 0
	maxAbs := 0.0
	for i, v := range vals {
		abs := cmplx.Abs(v)
		maxAbs = math.Max(maxAbs, abs)
		if abs < cmplx.Abs(vals[idx]) {
			idx = i
		}
	}

	z := make([]complex128, n)
	w := make([]complex128, n)
	for i := 0; i < n; i++ {
		top := vecs.At(i, idx)
		bottom := vecs.At(i+n, idx)
		z[i] = (top + 1i*bottom) / 2
		w[i] = cmplx.Conj((top - 1i*bottom) / 2)
	}
	value := vals[idx]
	if norm(w) > norm(z) {
		z = w
		value = cmplx.Conj(value)
	}
	return Eigenpair{Value: value, Vector: Normalize(z), MaxAbs: maxAbs}, nil
}

// SingularityRatio returns σ_min/σ_max of a, zero for an exactly singular matrix
// and one for a multiple of a unitary matrix.
func SingularityRatio(a mat.CMatrix) (float64, error) {
	var svd mat.SVD
	if ok := svd.Factorize(Embed(a), mat.SVDNone); !ok {
		return 0, ErrFactorization
	}
	vals := svd.Values(nil)
	if len(vals) == 0 || vals[0] == 0 {
		return 0, nil
	}
	return vals[len(vals)-1] / vals[0], nil
}

// Normalize scales v so that its largest-modulus component equals 1.
func Normalize(v []complex128) []complex128 {
	out := make([]complex128, len(v))
	var pivot complex128
	for _, x := range v {
		if cmplx.Abs(x) > cmplx.Abs(pivot) {
			pivot = x
		}
	}
	if pivot == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = x / pivot
	}
	return out
}

// MulVec returns a·x.
func MulVec(a mat.CMatrix, x []complex128) []complex128 {
	r, c := a.Dims()
	y := make([]complex128, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c && j < len(x); j++ {
			y[i] += a.At(i, j) * x[j]
		}
	}
	return y
}

func norm(v []complex128) float64 {
	s := 0.0
	for _, x := range v {
		s += real(x)*real(x) + imag(x)*imag(x)
	}
	return math.Sqrt(s)
}
