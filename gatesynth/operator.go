package gatesynth

import (
	"fmt"

	"github.com/zeu5/gate-synth-rl/tensor"
)

// Identity returns the identity operator on n qubits as a rank 2n tensor
func Identity(n int) *tensor.Tensor {
	op := tensor.New(operatorShape(n)...)
	idx := make([]int, 2*n)
	for basis := 0; basis < 1<<n; basis++ {
		for q := 0; q < n; q++ {
			b := bitOf(basis, q, n)
			idx[2*q] = b
			idx[2*q+1] = b
		}
		op.Set(1, idx...)
	}
	return op
}

// OperatorFromMatrix lays a 2^n x 2^n matrix out as an operator tensor.
// Qubit 0 is the most significant bit of the row and column indices, which
// is the same layout Encode produces.
func OperatorFromMatrix(m [][]complex128) (*tensor.Tensor, error) {
	d := len(m)
	n := 0
	for 1<<n < d {
		n++
	}
	if d == 0 || 1<<n != d {
		return nil, fmt.Errorf("%w: matrix side %d is not a power of two", ErrConfiguration, d)
	}
	op := tensor.New(operatorShape(n)...)
	idx := make([]int, 2*n)
	for r, row := range m {
		if len(row) != d {
			return nil, fmt.Errorf("%w: matrix is not square", ErrConfiguration)
		}
		for c, v := range row {
			for q := 0; q < n; q++ {
				idx[2*q] = bitOf(r, q, n)
				idx[2*q+1] = bitOf(c, q, n)
			}
			op.Set(v, idx...)
		}
	}
	return op, nil
}

// QubitsOf validates the operator shape and returns its qubit count
func QubitsOf(op *tensor.Tensor) (int, error) {
	if op == nil {
		return 0, fmt.Errorf("%w: missing operator", ErrConfiguration)
	}
	rank := op.Rank()
	if rank == 0 || rank%2 != 0 {
		return 0, fmt.Errorf("%w: operator rank %d is not even", ErrConfiguration, rank)
	}
	for ax, d := range op.Shape() {
		if d != 2 {
			return 0, fmt.Errorf("%w: operator axis %d has dimension %d", ErrConfiguration, ax, d)
		}
	}
	return rank / 2, nil
}

func operatorShape(n int) []int {
	shape := make([]int, 2*n)
	for i := range shape {
		shape[i] = 2
	}
	return shape
}

// qubit 0 is the most significant bit
func bitOf(idx, q, n int) int {
	return (idx >> (n - 1 - q)) & 1
}
