package solver

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/branchwave/internal/diag"
	"github.com/san-kum/branchwave/internal/wave"
)

// Structure is what the solver evaluates. *frame.Frame satisfies it.
type Structure interface {
	Determinant(w float64) (complex128, error)
	Singularity(w float64) (float64, error)
}

// Options tune the searches.
type Options struct {
	// CertifyTolerance is the largest σ_min/σ_max accepted at a root.
	CertifyTolerance float64
	// ZeroTolerance is the |det| at which a search stops immediately.
	ZeroTolerance float64
	// DerivativeStep is the finite-difference step in hertz.
	DerivativeStep float64
	// Precision and MaxIter bound the bisections run by Scan.
	Precision float64
	MaxIter   int
	// MinChunk is the smallest number of sweep samples given to one worker.
	MinChunk int

	Sink    diag.Sink
	Metrics *diag.Metrics
}

// DefaultOptions returns the settings used by New.
func DefaultOptions() Options {
	return Options{
		CertifyTolerance: 1e-6,
		ZeroTolerance:    1e-14,
		DerivativeStep:   1e-6,
		Precision:        1e-9,
		MaxIter:          200,
		MinChunk:         8,
		Sink:             diag.Nop{},
	}
}

// Option configures a Solver.
type Option func(*Options)

func WithCertifyTolerance(tol float64) Option {
	return func(o *Options) { o.CertifyTolerance = tol }
}

func WithZeroTolerance(tol float64) Option {
	return func(o *Options) { o.ZeroTolerance = tol }
}

func WithDerivativeStep(h float64) Option {
	return func(o *Options) { o.DerivativeStep = h }
}

// WithBisection sets the precision and iteration cap Scan bisects with.
func WithBisection(precision float64, maxIter int) Option {
	return func(o *Options) {
		o.Precision = precision
		o.MaxIter = maxIter
	}
}

func WithMinChunk(n int) Option {
	return func(o *Options) { o.MinChunk = n }
}

func WithSink(s diag.Sink) Option {
	return func(o *Options) { o.Sink = s }
}

func WithMetrics(m *diag.Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// Solver runs frequency searches on one structure. It holds no per-search state.
type Solver struct {
	s    Structure
	opts Options
}

// New returns a solver for s.
func New(s Structure, opts ...Option) *Solver {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Sink == nil {
		o.Sink = diag.Nop{}
	}
	return &Solver{s: s, opts: o}
}

// Options returns the solver settings.
func (s *Solver) Options() Options { return s.opts }

// Determinant returns det A(2π·hz).
func (s *Solver) Determinant(hz float64) (complex128, error) {
	return s.s.Determinant(angular(hz))
}

// Certify returns σ_min/σ_max at hz and whether it is within CertifyTolerance.
func (s *Solver) Certify(hz float64) (float64, bool, error) {
	r, err := s.s.Singularity(angular(hz))
	if err != nil {
		return 0, false, err
	}
	return r, r <= s.opts.CertifyTolerance, nil
}

func angular(hz float64) float64 {
	return 2 * math.Pi * math.Abs(hz)
}

func validRange(lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo < 0 || hi < lo {
		return fmt.Errorf("%w: frequency range [%g, %g]", wave.ErrValidation, lo, hi)
	}
	return nil
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
