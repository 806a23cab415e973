package gates

import (
	"fmt"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/gate-synth-rl/tensor"
)

// bit of qubit q (qubit 0 is the most significant) in a basis index
func bit(idx, q, n int) int {
	return (idx >> (n - 1 - q)) & 1
}

// toMatrix flattens an operator tensor of n qubits into its 2^n x 2^n matrix
func toMatrix(op *tensor.Tensor, n int) [][]complex128 {
	d := 1 << n
	m := make([][]complex128, d)
	idx := make([]int, 2*n)
	for r := 0; r < d; r++ {
		m[r] = make([]complex128, d)
		for c := 0; c < d; c++ {
			for q := 0; q < n; q++ {
				idx[2*q] = bit(r, q, n)
				idx[2*q+1] = bit(c, q, n)
			}
			m[r][c] = op.At(idx...)
		}
	}
	return m
}

func fromMatrix(m [][]complex128, n int) *tensor.Tensor {
	shape := make([]int, 2*n)
	for i := range shape {
		shape[i] = 2
	}
	op := tensor.New(shape...)
	idx := make([]int, 2*n)
	for r := range m {
		for c := range m[r] {
			for q := 0; q < n; q++ {
				idx[2*q] = bit(r, q, n)
				idx[2*q+1] = bit(c, q, n)
			}
			op.Set(m[r][c], idx...)
		}
	}
	return op
}

func matMul(a, b [][]complex128) [][]complex128 {
	out := make([][]complex128, len(a))
	for i := range a {
		out[i] = make([]complex128, len(b[0]))
		for j := range b[0] {
			for k := range b {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}

// someOperator returns a dense, non symmetric operator so that axis mix ups show
func someOperator(n int) *tensor.Tensor {
	d := 1 << n
	m := make([][]complex128, d)
	for r := 0; r < d; r++ {
		m[r] = make([]complex128, d)
		for c := 0; c < d; c++ {
			m[r][c] = complex(float64(r*d+c+1), float64(c-r)/3)
		}
	}
	return fromMatrix(m, n)
}

// embedTwo builds the full matrix of a 4x4 gate acting on the ordered pair (a, b)
func embedTwo(g [4][4]complex128, a, b, n int) [][]complex128 {
	d := 1 << n
	m := make([][]complex128, d)
	for r := 0; r < d; r++ {
		m[r] = make([]complex128, d)
		for c := 0; c < d; c++ {
			same := true
			for q := 0; q < n; q++ {
				if q != a && q != b && bit(r, q, n) != bit(c, q, n) {
					same = false
					break
				}
			}
			if !same {
				continue
			}
			gr := bit(r, a, n)<<1 | bit(r, b, n)
			gc := bit(c, a, n)<<1 | bit(c, b, n)
			m[r][c] = g[gr][gc]
		}
	}
	return m
}

func embedSingle(g *SingleQubitGate, q, n int) [][]complex128 {
	d := 1 << n
	m := make([][]complex128, d)
	for r := 0; r < d; r++ {
		m[r] = make([]complex128, d)
		for c := 0; c < d; c++ {
			same := true
			for o := 0; o < n; o++ {
				if o != q && bit(r, o, n) != bit(c, o, n) {
					same = false
				}
			}
			if same {
				m[r][c] = g.t.At(bit(r, q, n), bit(c, q, n))
			}
		}
	}
	return m
}

func requireMatrixClose(t *testing.T, want, got [][]complex128) {
	t.Helper()
	require.Equal(t, len(want), len(got))
	for i := range want {
		for j := range want[i] {
			require.Truef(t, cmplx.Abs(want[i][j]-got[i][j]) < 1e-9, "element (%d,%d): want %v got %v", i, j, want[i][j], got[i][j])
		}
	}
}

func TestIdentityIsNoOp(t *testing.T) {
	for n := 1; n <= 3; n++ {
		op := someOperator(n)
		for q := 0; q < n; q++ {
			out := I.Apply(op, q)
			assert.True(t, tensor.AllClose(out, op, 0, 1e-12), "n=%d q=%d", n, q)
		}
	}
}

func TestInverseRoundTrip(t *testing.T) {
	op := someOperator(2)
	for _, g := range []*SingleQubitGate{X, Y, Z, H, S, T} {
		for q := 0; q < 2; q++ {
			inv := g.Inverse().(*SingleQubitGate)
			out := inv.Apply(g.Apply(op, q), q)
			assert.True(t, tensor.AllClose(out, op, 1e-9, 1e-9), "gate %s on %d", g.Name(), q)
		}
	}
	for _, g := range []*TwoQubitGate{CNOT, CZ, SWAP} {
		inv := g.Inverse().(*TwoQubitGate)
		out := inv.Apply(g.Apply(op, 1, 0), 1, 0)
		assert.True(t, tensor.AllClose(out, op, 1e-9, 1e-9), "gate %s", g.Name())
	}
}

func TestInverseName(t *testing.T) {
	assert.Equal(t, "Sdg", S.Inverse().Name())
	assert.Equal(t, "S", Sdg.Inverse().Name())
	assert.Equal(t, "CNOTdg", CNOT.Inverse().Name())
}

func TestSingleQubitIsLeftMultiplication(t *testing.T) {
	n := 3
	op := someOperator(n)
	for _, g := range []*SingleQubitGate{X, Y, H, T} {
		for q := 0; q < n; q++ {
			want := matMul(embedSingle(g, q, n), toMatrix(op, n))
			got := toMatrix(g.Apply(op, q), n)
			requireMatrixClose(t, want, got)
		}
	}
}

func TestTwoQubitIsLeftMultiplication(t *testing.T) {
	n := 3
	op := someOperator(n)
	cnot := [4][4]complex128{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 0, 1}, {0, 0, 1, 0}}
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			if a == b {
				continue
			}
			t.Run(fmt.Sprintf("CNOT(%d,%d)", a, b), func(t *testing.T) {
				want := matMul(embedTwo(cnot, a, b, n), toMatrix(op, n))
				got := toMatrix(CNOT.Apply(op, a, b), n)
				requireMatrixClose(t, want, got)
			})
		}
	}
}

func TestTwoQubitOrderMatters(t *testing.T) {
	op := someOperator(2)
	ab := CNOT.Apply(op, 0, 1)
	ba := CNOT.Apply(op, 1, 0)
	assert.False(t, tensor.AllClose(ab, ba, 1e-6, 1e-9))

	// SWAP is symmetric in its qubits
	assert.True(t, tensor.AllClose(SWAP.Apply(op, 0, 1), SWAP.Apply(op, 1, 0), 1e-12, 1e-12))
}

func TestApplyDispatch(t *testing.T) {
	op := someOperator(2)

	out, err := Apply(op, X.Tensor(), 1)
	require.NoError(t, err)
	assert.True(t, tensor.AllClose(out, X.Apply(op, 1), 0, 0))

	out, err = Apply(op, CNOT.Tensor(), 1, 0)
	require.NoError(t, err)
	assert.True(t, tensor.AllClose(out, CNOT.Apply(op, 1, 0), 0, 0))

	_, err = Apply(op, tensor.New(2, 2, 2), 0)
	require.ErrorIs(t, err, ErrUnsupportedGateShape)

	_, err = Apply(op, CNOT.Tensor(), 1, 1)
	require.Error(t, err)
}

func TestFromMatrix(t *testing.T) {
	g, err := FromMatrix("V", [][]complex128{{0, 1}, {1, 0}})
	require.NoError(t, err)
	assert.Equal(t, 1, g.Arity())
	assert.True(t, tensor.AllClose(g.Tensor(), X.Tensor(), 0, 0))

	g, err = FromMatrix("CX2", [][]complex128{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 0, 1}, {0, 0, 1, 0}})
	require.NoError(t, err)
	assert.Equal(t, 2, g.Arity())
	assert.True(t, tensor.AllClose(g.Tensor(), CNOT.Tensor(), 0, 0))

	_, err = FromMatrix("bad", [][]complex128{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	require.ErrorIs(t, err, ErrUnsupportedGateShape)

	_, err = FromTensor("bad", tensor.New(3, 3))
	require.ErrorIs(t, err, ErrUnsupportedGateShape)
}

func TestLookup(t *testing.T) {
	g, ok := Lookup("CX")
	require.True(t, ok)
	assert.Equal(t, "CNOT", g.Name())
	_, ok = Lookup("nope")
	assert.False(t, ok)
	assert.Contains(t, Names(), "H")
}
