package gatesynth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/zeu5/gate-synth-rl/tensor"
	"gonum.org/v1/gonum/mat"
)

// Observation is the operator flattened to a D x D matrix (D = 2^N), split
// into its real and imaginary parts.
type Observation struct {
	Real *mat.Dense
	Imag *mat.Dense
}

// Encode groups the row axes of all qubits (in qubit order) before the
// column axes, then flattens the operator into a square matrix. The
// operator is not modified.
func Encode(op *tensor.Tensor) Observation {
	n := op.Rank() / 2
	perm := make([]int, 0, 2*n)
	for q := 0; q < n; q++ {
		perm = append(perm, 2*q)
	}
	for q := 0; q < n; q++ {
		perm = append(perm, 2*q+1)
	}
	d := 1 << n
	flat := op.Transpose(perm...).Data()

	re := make([]float64, d*d)
	im := make([]float64, d*d)
	for i, v := range flat {
		re[i] = real(v)
		im[i] = imag(v)
	}
	return Observation{
		Real: mat.NewDense(d, d, re),
		Imag: mat.NewDense(d, d, im),
	}
}

// Dim is the side of the observed matrix
func (o Observation) Dim() int {
	r, _ := o.Real.Dims()
	return r
}

// Layers returns the (2, D, D) structure: real part then imaginary part
func (o Observation) Layers() [][][]float64 {
	d := o.Dim()
	out := make([][][]float64, 2)
	for l, m := range []*mat.Dense{o.Real, o.Imag} {
		out[l] = make([][]float64, d)
		for i := 0; i < d; i++ {
			out[l][i] = mat.Row(nil, i, m)
		}
	}
	return out
}

// At returns the complex matrix element (i, j)
func (o Observation) At(i, j int) complex128 {
	return complex(o.Real.At(i, j), o.Imag.At(i, j))
}

// Hash keys the observation for tabular learners. Values are rounded to
// six decimals so that float noise from different gate orders collapses.
func (o Observation) Hash() string {
	d := o.Dim()
	var b strings.Builder
	for _, m := range []*mat.Dense{o.Real, o.Imag} {
		for i := 0; i < d; i++ {
			for j := 0; j < d; j++ {
				v := math.Round(m.At(i, j)*1e6) / 1e6
				if v == 0 {
					v = 0 // drop negative zero
				}
				fmt.Fprintf(&b, "%g,", v)
			}
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:16]
}

func (o Observation) String() string {
	d := o.Dim()
	var b strings.Builder
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			if j > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%+.4f%+.4fi", o.Real.At(i, j), o.Imag.At(i, j))
		}
		b.WriteString("\n")
	}
	return b.String()
}
