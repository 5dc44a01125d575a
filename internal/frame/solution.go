package frame

import (
	"fmt"

	"github.com/san-kum/branchwave/internal/wave"
)

// Solution assigns a complex amplitude to every unknown of a frame at one
// angular frequency.
type Solution struct {
	W      float64
	Params []wave.Symbol
	Values []complex128

	index map[wave.Symbol]int
}

// NewSolution pairs params with values in order.
func NewSolution(w float64, params []wave.Symbol, values []complex128) *Solution {
	s := &Solution{
		W:      w,
		Params: params,
		Values: values,
		index:  make(map[wave.Symbol]int, len(params)),
	}
	for i, p := range params {
		s.index[p] = i
	}
	return s
}

// Amplitude returns the value of sym, zero for an unknown symbol.
func (s *Solution) Amplitude(sym wave.Symbol) complex128 {
	if i, ok := s.index[sym]; ok && i < len(s.Values) {
		return s.Values[i]
	}
	return 0
}

// Lookup returns the value of sym and whether it is part of the solution.
func (s *Solution) Lookup(sym wave.Symbol) (complex128, bool) {
	i, ok := s.index[sym]
	if !ok || i >= len(s.Values) {
		return 0, false
	}
	return s.Values[i], true
}

// Map returns the solution as a map.
func (s *Solution) Map() map[wave.Symbol]complex128 {
	out := make(map[wave.Symbol]complex128, len(s.Params))
	for i, p := range s.Params {
		out[p] = s.Values[i]
	}
	return out
}

func (s *Solution) String() string {
	return fmt.Sprintf("solution(w=%g, %d unknowns)", s.W, len(s.Params))
}
