// Package tensor implements the small dense complex tensor needed to hold
// multi-qubit operators. Storage is row-major. Shape mismatches are
// programmer errors and panic, the way gonum/mat does.
package tensor

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

var (
	ErrShape = errors.New("tensor: shape mismatch")
	ErrAxis  = errors.New("tensor: invalid axis")
)

type Tensor struct {
	shape   []int
	strides []int
	data    []complex128
}

// New returns a zero tensor of the given shape
func New(shape ...int) *Tensor {
	size := 1
	for _, d := range shape {
		if d <= 0 {
			panic(ErrShape)
		}
		size *= d
	}
	return &Tensor{
		shape:   append([]int{}, shape...),
		strides: stridesOf(shape),
		data:    make([]complex128, size),
	}
}

// FromData wraps a copy of data as a tensor of the given shape
func FromData(data []complex128, shape ...int) (*Tensor, error) {
	size := 1
	for _, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("%w: non positive dimension %d", ErrShape, d)
		}
		size *= d
	}
	if size != len(data) {
		return nil, fmt.Errorf("%w: %d elements for shape %v", ErrShape, len(data), shape)
	}
	t := New(shape...)
	copy(t.data, data)
	return t, nil
}

func stridesOf(shape []int) []int {
	strides := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= shape[i]
	}
	return strides
}

func (t *Tensor) Rank() int {
	return len(t.shape)
}

func (t *Tensor) Size() int {
	return len(t.data)
}

func (t *Tensor) Shape() []int {
	return append([]int{}, t.shape...)
}

// Data returns a copy of the row-major elements
func (t *Tensor) Data() []complex128 {
	return append([]complex128{}, t.data...)
}

func (t *Tensor) offset(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(ErrAxis)
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= t.shape[i] {
			panic(ErrAxis)
		}
		off += v * t.strides[i]
	}
	return off
}

func (t *Tensor) At(idx ...int) complex128 {
	return t.data[t.offset(idx)]
}

func (t *Tensor) Set(v complex128, idx ...int) {
	t.data[t.offset(idx)] = v
}

func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		shape:   append([]int{}, t.shape...),
		strides: append([]int{}, t.strides...),
		data:    append([]complex128{}, t.data...),
	}
}

// SameShape reports whether both tensors have identical shapes
func (t *Tensor) SameShape(other *Tensor) bool {
	if len(t.shape) != len(other.shape) {
		return false
	}
	for i := range t.shape {
		if t.shape[i] != other.shape[i] {
			return false
		}
	}
	return true
}

// Reshape returns a tensor with the same elements laid out in a new shape
func (t *Tensor) Reshape(shape ...int) *Tensor {
	out, err := FromData(t.data, shape...)
	if err != nil {
		panic(err)
	}
	return out
}

// Transpose permutes the axes: axis i of the result is axis perm[i] of t.
func (t *Tensor) Transpose(perm ...int) *Tensor {
	if len(perm) != len(t.shape) {
		panic(ErrAxis)
	}
	seen := make([]bool, len(perm))
	shape := make([]int, len(perm))
	srcStrides := make([]int, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			panic(ErrAxis)
		}
		seen[p] = true
		shape[i] = t.shape[p]
		srcStrides[i] = t.strides[p]
	}
	out := New(shape...)
	if len(shape) == 0 {
		out.data[0] = t.data[0]
		return out
	}
	idx := make([]int, len(shape))
	src := 0
	for dst := range out.data {
		out.data[dst] = t.data[src]
		// odometer increment over the result's index, tracking the source offset
		for ax := len(shape) - 1; ax >= 0; ax-- {
			idx[ax]++
			src += srcStrides[ax]
			if idx[ax] < shape[ax] {
				break
			}
			src -= srcStrides[ax] * shape[ax]
			idx[ax] = 0
		}
	}
	return out
}

// Contract sums a and b over the paired axes axesA[i] <-> axesB[i].
// The result holds the free axes of a in their original order followed by
// the free axes of b in their original order.
func Contract(a, b *Tensor, axesA, axesB []int) *Tensor {
	if len(axesA) != len(axesB) {
		panic(ErrAxis)
	}
	k := 1
	for i := range axesA {
		if a.shape[axesA[i]] != b.shape[axesB[i]] {
			panic(ErrShape)
		}
		k *= a.shape[axesA[i]]
	}
	freeA := freeAxes(a.Rank(), axesA)
	freeB := freeAxes(b.Rank(), axesB)

	m, n := 1, 1
	outShape := make([]int, 0, len(freeA)+len(freeB))
	for _, ax := range freeA {
		m *= a.shape[ax]
		outShape = append(outShape, a.shape[ax])
	}
	for _, ax := range freeB {
		n *= b.shape[ax]
		outShape = append(outShape, b.shape[ax])
	}

	// a as (m, k) and b as (k, n)
	left := a.Transpose(append(append([]int{}, freeA...), axesA...)...)
	right := b.Transpose(append(append([]int{}, axesB...), freeB...)...)

	prod := make([]complex128, m*n)
	for i := 0; i < m; i++ {
		row := left.data[i*k : (i+1)*k]
		for l, lv := range row {
			if lv == 0 {
				continue
			}
			col := right.data[l*n : (l+1)*n]
			for j, rv := range col {
				prod[i*n+j] += lv * rv
			}
		}
	}
	if len(outShape) == 0 {
		outShape = []int{1}
	}
	out, err := FromData(prod, outShape...)
	if err != nil {
		panic(err)
	}
	return out
}

func freeAxes(rank int, contracted []int) []int {
	used := make([]bool, rank)
	for _, ax := range contracted {
		if ax < 0 || ax >= rank || used[ax] {
			panic(ErrAxis)
		}
		used[ax] = true
	}
	free := make([]int, 0, rank-len(contracted))
	for ax := 0; ax < rank; ax++ {
		if !used[ax] {
			free = append(free, ax)
		}
	}
	return free
}

// Conj returns the elementwise complex conjugate
func (t *Tensor) Conj() *Tensor {
	out := t.Clone()
	for i, v := range out.data {
		out.data[i] = cmplx.Conj(v)
	}
	return out
}

// AllClose reports whether |a-b| <= atol + rtol*|b| holds for every element.
// The comparison is asymmetric: b is the reference.
func AllClose(a, b *Tensor, rtol, atol float64) bool {
	if !a.SameShape(b) {
		return false
	}
	for i, av := range a.data {
		bv := b.data[i]
		if cmplx.IsNaN(av) || cmplx.IsNaN(bv) {
			return false
		}
		if cmplx.Abs(av-bv) > atol+rtol*cmplx.Abs(bv) {
			return false
		}
	}
	return true
}

// Distance is the Frobenius norm of a-b
func Distance(a, b *Tensor) float64 {
	if !a.SameShape(b) {
		panic(ErrShape)
	}
	sum := 0.0
	for i, av := range a.data {
		d := cmplx.Abs(av - b.data[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func (t *Tensor) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tensor%v[", t.shape)
	for i, v := range t.data {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%.4g", v)
	}
	b.WriteString("]")
	return b.String()
}
