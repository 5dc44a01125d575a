package wave

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Term is one coefficient-symbol product of a linear equation.
type Term struct {
	Symbol Symbol
	Coeff  complex128
}

// Equation is Σ Coeff·Symbol + Constant = 0. Free vibration rows have a zero constant.
type Equation struct {
	Terms    []Term
	Constant complex128
}

// Coefficient returns the summed coefficient of s in the equation.
func (e Equation) Coefficient(s Symbol) complex128 {
	var c complex128
	for _, t := range e.Terms {
		if t.Symbol == s {
			c += t.Coeff
		}
	}
	return c
}

// Homogeneous reports whether the equation has no constant term.
func (e Equation) Homogeneous() bool {
	return e.Constant == 0
}

func (e Equation) String() string {
	var sb strings.Builder
	for i, t := range e.Terms {
		if i > 0 {
			sb.WriteString(" + ")
		}
		fmt.Fprintf(&sb, "(%.4g)%s", t.Coeff, t.Symbol)
	}
	if e.Constant != 0 {
		fmt.Fprintf(&sb, " + (%.4g)", e.Constant)
	}
	sb.WriteString(" = 0")
	return sb.String()
}

// Block is a scaled matrix-vector product contributing to stacked equations.
// A nil M stands for the identity.
type Block struct {
	M     mat.CMatrix
	V     Vector
	Scale complex128
}

// Mul returns the block M·v.
func Mul(m mat.CMatrix, v Vector) Block {
	return Block{M: m, V: v, Scale: 1}
}

// Scaled returns the block s·M·v.
func Scaled(s complex128, m mat.CMatrix, v Vector) Block {
	return Block{M: m, V: v, Scale: s}
}

// Neg returns the block −v.
func Neg(v Vector) Block {
	return Block{V: v, Scale: -1}
}

// Rows stacks the blocks into NumChannels equations, row i being the sum over the
// blocks of row i of each product. Zero coefficients are dropped.
func Rows(blocks ...Block) []Equation {
	eqs := make([]Equation, NumChannels)
	for i := 0; i < NumChannels; i++ {
		for _, b := range blocks {
			for j := 0; j < NumChannels; j++ {
				c := b.Scale * entry(b.M, i, j)
				if c == 0 {
					continue
				}
				eqs[i].Terms = append(eqs[i].Terms, Term{Symbol: b.V[j], Coeff: c})
			}
		}
	}
	return eqs
}

// WithConstant adds src[i] to the constant of eqs[i].
func WithConstant(eqs []Equation, src [NumChannels]complex128) []Equation {
	for i := range eqs {
		if i < NumChannels {
			eqs[i].Constant += src[i]
		}
	}
	return eqs
}

func entry(m mat.CMatrix, i, j int) complex128 {
	if m == nil {
		if i == j {
			return 1
		}
		return 0
	}
	return m.At(i, j)
}
