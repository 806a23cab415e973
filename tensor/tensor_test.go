package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(shape ...int) *Tensor {
	t := New(shape...)
	for i := range t.data {
		t.data[i] = complex(float64(i), float64(-i))
	}
	return t
}

func TestFromDataRejectsWrongSize(t *testing.T) {
	_, err := FromData(make([]complex128, 3), 2, 2)
	require.ErrorIs(t, err, ErrShape)

	_, err = FromData(nil, 0)
	require.ErrorIs(t, err, ErrShape)
}

func TestTranspose(t *testing.T) {
	a := seq(2, 3, 4)
	tr := a.Transpose(2, 0, 1)
	require.Equal(t, []int{4, 2, 3}, tr.Shape())
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 4; k++ {
				assert.Equal(t, a.At(i, j, k), tr.At(k, i, j))
			}
		}
	}

	assert.Panics(t, func() { a.Transpose(0, 0, 1) })
	assert.Panics(t, func() { a.Transpose(0, 1) })
}

func TestContractIsMatrixProduct(t *testing.T) {
	a := seq(2, 3)
	b := seq(3, 4)
	c := Contract(a, b, []int{1}, []int{0})
	require.Equal(t, []int{2, 4}, c.Shape())
	for i := 0; i < 2; i++ {
		for j := 0; j < 4; j++ {
			var want complex128
			for k := 0; k < 3; k++ {
				want += a.At(i, k) * b.At(k, j)
			}
			assert.Equal(t, want, c.At(i, j))
		}
	}
}

func TestContractAxisOrder(t *testing.T) {
	// free axes of a come first in their original order, then those of b
	a := seq(2, 3, 5)
	b := seq(7, 3)
	c := Contract(a, b, []int{1}, []int{1})
	require.Equal(t, []int{2, 5, 7}, c.Shape())
	for i := 0; i < 2; i++ {
		for l := 0; l < 5; l++ {
			for m := 0; m < 7; m++ {
				var want complex128
				for k := 0; k < 3; k++ {
					want += a.At(i, k, l) * b.At(m, k)
				}
				assert.Equal(t, want, c.At(i, l, m))
			}
		}
	}
}

func TestContractTwoAxes(t *testing.T) {
	a := seq(2, 2, 2)
	b := seq(2, 2, 2)
	c := Contract(a, b, []int{0, 2}, []int{1, 2})
	require.Equal(t, []int{2, 2}, c.Shape())
	for j := 0; j < 2; j++ {
		for m := 0; m < 2; m++ {
			var want complex128
			for x := 0; x < 2; x++ {
				for y := 0; y < 2; y++ {
					want += a.At(x, j, y) * b.At(m, x, y)
				}
			}
			assert.Equal(t, want, c.At(j, m))
		}
	}
}

func TestContractShapeMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { Contract(seq(2, 3), seq(2, 3), []int{1}, []int{0}) })
}

func TestAllClose(t *testing.T) {
	a := New(2)
	a.Set(1, 0)
	a.Set(0.5i, 1)

	b := a.Clone()
	b.Set(1+1e-4, 0)
	b.Set(0.5i+1e-4, 1)

	assert.True(t, AllClose(b, a, 1e-3, 0))
	assert.False(t, AllClose(b, a, 1e-5, 0))
	assert.False(t, AllClose(b, New(3), 1e-3, 0))
}

func TestDistance(t *testing.T) {
	a := New(2)
	b := New(2)
	b.Set(3, 0)
	b.Set(4i, 1)
	assert.InDelta(t, 5.0, Distance(a, b), 1e-12)
}

func TestCloneIsIndependent(t *testing.T) {
	a := seq(2, 2)
	b := a.Clone()
	b.Set(42, 0, 0)
	assert.NotEqual(t, a.At(0, 0), b.At(0, 0))
}
