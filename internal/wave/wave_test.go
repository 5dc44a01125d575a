package wave

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSymbolString(t *testing.T) {
	tests := []struct {
		sym  Symbol
		want string
	}{
		{Symbol{Member: 0, Station: "a", Dir: Plus, Channel: Bending}, "a_b^+0"},
		{Symbol{Member: 3, Station: "b", Dir: Minus, Channel: Evanescent}, "b_e^-3"},
		{Symbol{Member: 12, Station: "g1", Dir: Plus, Channel: Longitudinal}, "g1_l^+12"},
	}

	for _, tt := range tests {
		if got := tt.sym.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestNewVector(t *testing.T) {
	v := NewVector(2, "b", Minus)
	for c, s := range v.Symbols() {
		if s.Channel != Channel(c) {
			t.Errorf("channel %d: expected %v, got %v", c, Channel(c), s.Channel)
		}
		if s.Member != 2 || s.Station != "b" || s.Dir != Minus {
			t.Errorf("unexpected symbol %v", s)
		}
	}
}

func TestRows(t *testing.T) {
	in := NewVector(0, "a", Minus)
	out := NewVector(0, "a", Plus)
	r := mat.NewCDense(3, 3, []complex128{
		-1i, 1 + 1i, 0,
		1 - 1i, 1i, 0,
		0, 0, 1,
	})

	eqs := Rows(Mul(r, in), Neg(out))
	if len(eqs) != NumChannels {
		t.Fatalf("expected %d rows, got %d", NumChannels, len(eqs))
	}

	// zero coefficients dropped: row 0 has two entries of R plus −out
	if n := len(eqs[0].Terms); n != 3 {
		t.Errorf("expected 3 terms in row 0, got %d", n)
	}
	if c := eqs[0].Coefficient(in[1]); c != 1+1i {
		t.Errorf("expected 1+1i, got %v", c)
	}
	if c := eqs[2].Coefficient(out[2]); c != -1 {
		t.Errorf("expected -1, got %v", c)
	}
	if c := eqs[2].Coefficient(in[0]); c != 0 {
		t.Errorf("expected 0, got %v", c)
	}
	for _, e := range eqs {
		if !e.Homogeneous() {
			t.Error("expected homogeneous equation")
		}
	}
}

func TestScaledAndConstant(t *testing.T) {
	v := NewVector(1, "g0", Plus)
	eqs := Rows(Scaled(2i, nil, v))
	eqs = WithConstant(eqs, [NumChannels]complex128{1, 0, -3})

	if c := eqs[1].Coefficient(v[1]); c != 2i {
		t.Errorf("expected 2i, got %v", c)
	}
	if eqs[0].Constant != 1 || eqs[2].Constant != -3 {
		t.Errorf("unexpected constants %v %v", eqs[0].Constant, eqs[2].Constant)
	}
	if !eqs[1].Homogeneous() {
		t.Error("row 1 should stay homogeneous")
	}
}

func TestConstraintError(t *testing.T) {
	err := &ConstraintError{Constraint: 4, Member: 1, Wrapped: ErrOverConstrained}
	wrapped := fmt.Errorf("attach: %w", err)

	if !errors.Is(wrapped, ErrOverConstrained) {
		t.Error("expected errors.Is to find ErrOverConstrained")
	}
	var ce *ConstraintError
	if !errors.As(wrapped, &ce) || ce.Constraint != 4 {
		t.Errorf("expected ConstraintError for constraint 4, got %v", ce)
	}
}

func TestParallelFor(t *testing.T) {
	for _, n := range []int{0, 1, 7, 1000} {
		var sum atomic.Int64
		seen := make([]int32, n)
		ParallelFor(n, 4, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
				sum.Add(int64(i))
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, c)
			}
		}
		if want := int64(n * (n - 1) / 2); sum.Load() != want {
			t.Errorf("n=%d: expected sum %d, got %d", n, want, sum.Load())
		}
	}
}
