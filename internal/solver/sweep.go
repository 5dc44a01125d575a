package solver

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/branchwave/internal/wave"
)

// MaxSweepSamples bounds the number of frequencies one sweep evaluates.
const MaxSweepSamples = 1 << 20

// Sample is det A at one frequency.
type Sample struct {
	Frequency float64
	Det       complex128
}

// Sweep evaluates det A(2π·f) for f = lo, lo+step, … up to hi. Samples are
// computed concurrently and returned in frequency order.
func (s *Solver) Sweep(ctx context.Context, lo, hi, step float64) ([]Sample, error) {
	if err := validRange(lo, hi); err != nil {
		return nil, err
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: sweep step %g", wave.ErrValidation, step)
	}

	count := math.Floor((hi-lo)/step+1e-9) + 1
	if !(count <= MaxSweepSamples) {
		return nil, fmt.Errorf("%w: sweep of [%g, %g] at step %g exceeds %d samples", wave.ErrValidation, lo, hi, step, MaxSweepSamples)
	}
	n := int(count)
	samples := make([]Sample, n)
	errs := make([]error, n)

	wave.ParallelFor(n, s.opts.MinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			if err := checkContext(ctx); err != nil {
				errs[i] = err
				return
			}
			f := lo + float64(i)*step
			d, err := s.Determinant(f)
			samples[i] = Sample{Frequency: f, Det: d}
			errs[i] = err
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sweep at %g Hz: %w", samples[i].Frequency, err)
		}
	}
	s.opts.Sink.Debugf("swept %d samples over [%g, %g] Hz", n, lo, hi)
	return samples, nil
}

// Brackets returns the index pairs of consecutive samples across which both
// parts of det change sign.
func Brackets(samples []Sample) [][2]int {
	var out [][2]int
	for i := 1; i < len(samples); i++ {
		if crosses(samples[i-1].Det, samples[i].Det) {
			out = append(out, [2]int{i - 1, i})
		}
	}
	return out
}
