package types

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

type Policy interface {
	UpdateIteration(int, *Trace)
	NextAction(int, State, []Action) (Action, bool)
	Update(int, State, Action, State)
	Reset()
	// Record the learned values to the path
	Record(string)
}

// SoftMaxNegPolicy penalizes every transition with -1 and samples
// actions with a softmax over the learned values, pushing the agent
// towards actions it has tried less often
type SoftMaxNegPolicy struct {
	QTable map[string]map[string]float64
	alpha  float64
	gamma  float64
	src    rand.Source
}

func NewSoftMaxNegPolicy(alpha, gamma float64, seed uint64) *SoftMaxNegPolicy {
	return &SoftMaxNegPolicy{
		QTable: make(map[string]map[string]float64),
		alpha:  alpha,
		gamma:  gamma,
		src:    rand.NewSource(seed),
	}
}

var _ Policy = &SoftMaxNegPolicy{}

func (s *SoftMaxNegPolicy) Reset() {
	s.QTable = make(map[string]map[string]float64)
}

func (s *SoftMaxNegPolicy) UpdateIteration(_ int, _ *Trace) {

}

func (s *SoftMaxNegPolicy) NextAction(step int, state State, actions []Action) (Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	stateHash := state.Hash()

	if _, ok := s.QTable[stateHash]; !ok {
		s.QTable[stateHash] = make(map[string]float64)
	}

	for _, a := range actions {
		aName := a.Hash()
		if _, ok := s.QTable[stateHash][aName]; !ok {
			s.QTable[stateHash][aName] = 0
		}
	}

	vals := make([]float64, len(actions))
	for i, action := range actions {
		vals[i] = s.QTable[stateHash][action.Hash()]
	}
	i, ok := SoftMaxSample(vals, 1, s.src)
	if !ok {
		return nil, false
	}
	return actions[i], true
}

func (s *SoftMaxNegPolicy) Update(step int, state State, action Action, nextState State) {
	stateHash := state.Hash()

	nextStateHash := nextState.Hash()
	actionKey := action.Hash()
	if _, ok := s.QTable[stateHash]; !ok {
		return
	}
	if _, ok := s.QTable[stateHash][actionKey]; !ok {
		return
	}
	curVal := s.QTable[stateHash][actionKey]
	max := float64(0)
	if _, ok := s.QTable[nextStateHash]; ok {
		for _, val := range s.QTable[nextStateHash] {
			if val > max {
				max = val
			}
		}
	}
	nextVal := (1-s.alpha)*curVal + s.alpha*(-1+s.gamma*max)
	s.QTable[stateHash][actionKey] = nextVal
}

func (s *SoftMaxNegPolicy) Record(path string) {
	RecordQTable(path, s.QTable)
}

// SoftMaxSample draws an index with probability proportional to
// exp(v/temperature). Values are shifted by their maximum first.
func SoftMaxSample(vals []float64, temperature float64, src rand.Source) (int, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	if temperature <= 0 {
		temperature = 1
	}
	max := math.Inf(-1)
	for _, v := range vals {
		if v > max {
			max = v
		}
	}
	sum := float64(0)
	weights := make([]float64, len(vals))
	for i, v := range vals {
		weights[i] = math.Exp((v - max) / temperature)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] = weights[i] / sum
	}
	return sampleuv.NewWeighted(weights, src).Take()
}

// RecordQTable writes the table as JSON to path
func RecordQTable(path string, table map[string]map[string]float64) {
	bs, err := json.Marshal(table)
	if err != nil {
		return
	}
	os.WriteFile(path+".json", bs, 0644)
}

type RandomPolicy struct {
	rand *rand.Rand
}

var _ Policy = &RandomPolicy{}

func NewRandomPolicy() *RandomPolicy {
	return NewSeededRandomPolicy(uint64(time.Now().UnixNano()))
}

func NewSeededRandomPolicy(seed uint64) *RandomPolicy {
	return &RandomPolicy{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomPolicy) Reset() {

}

func (r *RandomPolicy) UpdateIteration(_ int, _ *Trace) {

}

func (r *RandomPolicy) NextAction(step int, state State, actions []Action) (Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	i := r.rand.Intn(len(actions))
	return actions[i], true
}

func (r *RandomPolicy) Update(_ int, _ State, _ Action, _ State) {}

func (r *RandomPolicy) Record(_ string) {}
