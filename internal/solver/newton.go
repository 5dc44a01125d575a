package solver

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/branchwave/internal/wave"
	"gonum.org/v1/gonum/diff/fd"
)

// maxHalvings bounds the backtracking of one Newton step.
const maxHalvings = 40

// Newton searches for a natural frequency near guess with Newton-Raphson on
// f ↦ |det A(2π·|f|)|. The derivative is a central finite difference. A step
// that does not decrease |det| is halved until it does. The search stops when a
// step is shorter than tol hertz or |det| reaches ZeroTolerance, and the result
// |f| must then pass the singular-value certificate.
func (s *Solver) Newton(ctx context.Context, guess, tol float64, maxIter int) (float64, error) {
	if !(tol > 0) || maxIter < 1 {
		return 0, fmt.Errorf("%w: newton tol %g, max iterations %d", wave.ErrValidation, tol, maxIter)
	}

	var evalErr error
	g := func(f float64) float64 {
		d, err := s.Determinant(f)
		if err != nil && evalErr == nil {
			evalErr = err
		}
		return cmplx.Abs(d)
	}
	settings := &fd.Settings{Formula: fd.Central, Step: s.opts.DerivativeStep}

	f := guess
	gf := g(f)
	iter := 0
	converged := false
	for ; iter < maxIter; iter++ {
		if err := checkContext(ctx); err != nil {
			return 0, err
		}
		if evalErr != nil {
			return 0, evalErr
		}
		if gf <= s.opts.ZeroTolerance {
			converged = true
			break
		}
		s.opts.Metrics.Iteration("newton")

		settings.OriginKnown, settings.OriginValue = true, gf
		slope := fd.Derivative(g, f, settings)
		if slope == 0 || math.IsNaN(slope) || math.IsInf(slope, 0) {
			// flat or kinked: no descent direction left
			converged = true
			break
		}

		step := gf / slope
		next := f - step
		gn := g(next)
		for h := 0; gn >= gf && h < maxHalvings; h++ {
			step /= 2
			next = f - step
			gn = g(next)
		}
		if gn >= gf {
			converged = true
			break
		}
		s.opts.Sink.Debugf("newton %d: f=%.12g |det|=%.3e step=%.3e", iter, next, gn, step)
		f, gf = next, gn
		if math.Abs(step) < tol {
			converged = true
			iter++
			break
		}
	}
	if evalErr != nil {
		return 0, evalErr
	}

	f = math.Abs(f)
	if !converged {
		s.opts.Metrics.Search("newton", "exhausted", iter)
		return f, fmt.Errorf("%w: newton from %g Hz stopped at %g Hz after %d iterations", wave.ErrNonConvergence, guess, f, maxIter)
	}
	ratio, ok, err := s.Certify(f)
	if err != nil {
		return f, err
	}
	if !ok {
		s.opts.Metrics.Search("newton", "uncertified", iter)
		return f, fmt.Errorf("%w: |det| minimum at %g Hz is not a root (σ_min/σ_max = %.3g)", wave.ErrNonConvergence, f, ratio)
	}
	s.opts.Metrics.Search("newton", "converged", iter)
	s.opts.Sink.Infof("newton: %.9g Hz after %d iterations", f, iter)
	return f, nil
}
