package gatesynth

import "github.com/zeu5/gate-synth-rl/tensor"

// DefaultAbsTolerance is the absolute slack added to the relative test
const DefaultAbsTolerance = 1e-8

// Converged reports whether every element of current is within
// atol + rtol*|target| of the matching element of target. Near zero target
// elements make the test effectively absolute, so small rtol values can
// reject operators that are close in norm.
func Converged(current, target *tensor.Tensor, rtol, atol float64) bool {
	return tensor.AllClose(current, target, rtol, atol)
}
