package solver

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/branchwave/internal/wave"
)

// BisectResult is the outcome of a bracketed search. Found is false when the
// bracket has no root: neither the bracket nor any half of it showed a sign
// change in both parts of det.
type BisectResult struct {
	Frequency  float64
	Found      bool
	Iterations int
	// Width is the final bracket width in hertz.
	Width float64
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// crosses reports whether both the real and imaginary parts of det change sign
// between a and b.
func crosses(a, b complex128) bool {
	return sign(real(a))*sign(real(b)) < 0 && sign(imag(a))*sign(imag(b)) < 0
}

// Bisect narrows [lo, hi] around a root of det. It stops when |det| at the
// midpoint is at most ZeroTolerance, the bracket is narrower than precision, or
// after maxIter halvings. When both halves keep the sign pattern the lower one
// is taken.
func (s *Solver) Bisect(ctx context.Context, lo, hi, precision float64, maxIter int) (BisectResult, error) {
	if err := validRange(lo, hi); err != nil {
		return BisectResult{}, err
	}
	if !(precision > 0) || maxIter < 1 {
		return BisectResult{}, fmt.Errorf("%w: bisect precision %g, max iterations %d", wave.ErrValidation, precision, maxIter)
	}

	dlo, err := s.Determinant(lo)
	if err != nil {
		return BisectResult{}, err
	}
	dhi, err := s.Determinant(hi)
	if err != nil {
		return BisectResult{}, err
	}
	if !crosses(dlo, dhi) {
		s.opts.Metrics.Search("bisect", "no_root", 0)
		return BisectResult{Width: hi - lo}, nil
	}

	res := BisectResult{}
	for res.Iterations = 1; res.Iterations <= maxIter; res.Iterations++ {
		if err := checkContext(ctx); err != nil {
			return BisectResult{}, err
		}
		s.opts.Metrics.Iteration("bisect")

		mid := lo + (hi-lo)/2
		dm, err := s.Determinant(mid)
		if err != nil {
			return BisectResult{}, err
		}
		res.Frequency, res.Width = mid, hi-lo
		if cmplx.Abs(dm) <= s.opts.ZeroTolerance || hi-lo < precision {
			res.Found = true
			break
		}

		switch {
		case crosses(dlo, dm):
			hi, dhi = mid, dm
		case crosses(dm, dhi):
			lo, dlo = mid, dm
		default:
			s.opts.Sink.Debugf("bisect: sign pattern lost in [%g, %g]", lo, hi)
			s.opts.Metrics.Search("bisect", "no_root", res.Iterations)
			return BisectResult{Iterations: res.Iterations, Width: hi - lo}, nil
		}
	}
	if res.Iterations > maxIter {
		res.Iterations = maxIter
		res.Found = true
		res.Frequency, res.Width = lo+(hi-lo)/2, hi-lo
	}

	s.opts.Metrics.Search("bisect", "found", res.Iterations)
	s.opts.Sink.Infof("bisect: %.9g Hz (width %.2g) after %d iterations", res.Frequency, res.Width, res.Iterations)
	return res, nil
}

// Scan sweeps [lo, hi] and bisects every bracket, returning the certified roots
// in ascending order.
func (s *Solver) Scan(ctx context.Context, lo, hi, step float64) ([]float64, error) {
	samples, err := s.Sweep(ctx, lo, hi, step)
	if err != nil {
		return nil, err
	}
	var roots []float64
	for _, b := range Brackets(samples) {
		res, err := s.Bisect(ctx, samples[b[0]].Frequency, samples[b[1]].Frequency, s.opts.Precision, s.opts.MaxIter)
		if err != nil {
			return roots, err
		}
		if !res.Found {
			continue
		}
		_, ok, err := s.Certify(res.Frequency)
		if err != nil {
			return roots, err
		}
		if !ok {
			s.opts.Sink.Debugf("scan: discarding uncertified bracket at %g Hz", res.Frequency)
			continue
		}
		if n := len(roots); n > 0 && math.Abs(roots[n-1]-res.Frequency) < step/2 {
			continue
		}
		roots = append(roots, res.Frequency)
	}
	return roots, nil
}
