package gates

import (
	"fmt"

	"github.com/zeu5/gate-synth-rl/tensor"
)

// Operator axes: qubit k owns the row axis 2k and the column axis 2k+1.
// Gates act on the row axes, i.e. they multiply the operator from the left.
func rowAxis(qubit int) int {
	return 2 * qubit
}

// Apply contracts a raw gate tensor into op on the given qubits. The gate
// rank picks the routine: rank 2 takes one qubit, rank 4 an ordered pair.
func Apply(op, gate *tensor.Tensor, qubits ...int) (*tensor.Tensor, error) {
	switch gate.Rank() {
	case 2:
		if len(qubits) != 1 {
			return nil, fmt.Errorf("single qubit gate needs 1 target, got %d", len(qubits))
		}
		return applySingle(op, gate, qubits[0]), nil
	case 4:
		if len(qubits) != 2 || qubits[0] == qubits[1] {
			return nil, fmt.Errorf("two qubit gate needs 2 distinct targets, got %v", qubits)
		}
		return applyTwo(op, gate, qubits[0], qubits[1]), nil
	}
	return nil, fmt.Errorf("%w: rank %d", ErrUnsupportedGateShape, gate.Rank())
}

// applySingle contracts the row axis of qubit against the gate's column
// axis. The contraction leaves op's other axes in order with the gate's
// row axis appended last; that trailing axis is moved back to 2*qubit.
func applySingle(op, gate *tensor.Tensor, qubit int) *tensor.Tensor {
	idx := rowAxis(qubit)
	dim := op.Rank()
	contracted := tensor.Contract(op, gate, []int{idx}, []int{1})

	perm := make([]int, 0, dim+1)
	for i := 0; i < dim; i++ {
		perm = append(perm, i)
	}
	perm = insertAt(perm, idx, dim-1)
	return contracted.Transpose(perm[:dim]...)
}

// applyTwo contracts the row axes of a and b against the gate's in-A and
// in-B axes. The result carries (out-A, out-B) as its last two axes.
//
// Reinsertion: the output axis that belongs to the smaller of 2a and 2b is
// inserted first, at that smaller position; the other output axis is then
// inserted at the larger position. Each output axis therefore lands on the
// row axis of its own qubit whichever way the pair is ordered.
func applyTwo(op, gate *tensor.Tensor, a, b int) *tensor.Tensor {
	idxA, idxB := rowAxis(a), rowAxis(b)
	dim := op.Rank()
	contracted := tensor.Contract(op, gate, []int{idxA, idxB}, []int{2, 3})

	outA, outB := dim-2, dim-1
	smaller, bigger := idxA, idxB
	first, second := outA, outB
	if idxA > idxB {
		smaller, bigger = idxB, idxA
		first, second = outB, outA
	}

	perm := make([]int, 0, dim+2)
	for i := 0; i < dim; i++ {
		perm = append(perm, i)
	}
	perm = insertAt(perm, smaller, first)
	perm = insertAt(perm, bigger, second)
	return contracted.Transpose(perm[:dim]...)
}

func insertAt(s []int, pos, v int) []int {
	s = append(s, 0)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}
