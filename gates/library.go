package gates

import (
	"math"
	"math/cmplx"
	"sort"
)

var (
	invSqrt2 = complex(1/math.Sqrt2, 0)

	I = NewSingleQubitGate("I", [2][2]complex128{
		{1, 0},
		{0, 1},
	})
	X = NewSingleQubitGate("X", [2][2]complex128{
		{0, 1},
		{1, 0},
	})
	Y = NewSingleQubitGate("Y", [2][2]complex128{
		{0, -1i},
		{1i, 0},
	})
	Z = NewSingleQubitGate("Z", [2][2]complex128{
		{1, 0},
		{0, -1},
	})
	H = NewSingleQubitGate("H", [2][2]complex128{
		{invSqrt2, invSqrt2},
		{invSqrt2, -invSqrt2},
	})
	S = NewSingleQubitGate("S", [2][2]complex128{
		{1, 0},
		{0, 1i},
	})
	Sdg = NewSingleQubitGate("Sdg", [2][2]complex128{
		{1, 0},
		{0, -1i},
	})
	T = NewSingleQubitGate("T", [2][2]complex128{
		{1, 0},
		{0, cmplx.Exp(complex(0, math.Pi/4))},
	})
	Tdg = NewSingleQubitGate("Tdg", [2][2]complex128{
		{1, 0},
		{0, cmplx.Exp(complex(0, -math.Pi/4))},
	})

	// CNOT with qubit A as control and qubit B as target
	CNOT = NewTwoQubitGate("CNOT", [4][4]complex128{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	})
	CZ = NewTwoQubitGate("CZ", [4][4]complex128{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, -1},
	})
	SWAP = NewTwoQubitGate("SWAP", [4][4]complex128{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	})

	library = map[string]Gate{
		"I": I, "X": X, "Y": Y, "Z": Z, "H": H,
		"S": S, "Sdg": Sdg, "T": T, "Tdg": Tdg,
		"CNOT": CNOT, "CX": CNOT, "CZ": CZ, "SWAP": SWAP,
	}
)

// Lookup returns the standard gate registered under name
func Lookup(name string) (Gate, bool) {
	g, ok := library[name]
	return g, ok
}

// Names lists the registered gate names, sorted
func Names() []string {
	names := make([]string, 0, len(library))
	for n := range library {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultSingleQubitGates is the gate set used when none is configured
func DefaultSingleQubitGates() []*SingleQubitGate {
	return []*SingleQubitGate{I, X, Y, Z, H, S, T}
}

func DefaultTwoQubitGates() []*TwoQubitGate {
	return []*TwoQubitGate{CNOT}
}
