package types

import (
	"encoding/json"
	"os"

	"github.com/zeu5/gate-synth-rl/util"
)

// VisitGraph is the graph of states seen across episodes, keyed by the state hash
type VisitGraph struct {
	Nodes map[string]*Node `json:"nodes"`
}

func NewVisitGraph() *VisitGraph {
	return &VisitGraph{
		Nodes: make(map[string]*Node),
	}
}

// Update adds the transition and returns true if from was not seen before
func (v *VisitGraph) Update(from State, action string, to State) bool {
	fromKey := from.Hash()
	toKey := to.Hash()
	new := false
	if _, ok := v.Nodes[fromKey]; !ok {
		v.Nodes[fromKey] = NewNode(fromKey)
		new = true
	}
	if _, ok := v.Nodes[toKey]; !ok {
		v.Nodes[toKey] = NewNode(toKey)
	}
	v.Nodes[fromKey].Visits += 1
	v.Nodes[fromKey].AddNext(action, toKey)
	v.Nodes[toKey].AddPrev(action, fromKey)
	if len(to.Actions()) == 0 {
		v.Nodes[toKey].Terminal = true
	}
	return new
}

// Path follows the recorded actions from the node start, stopping at the
// first action that was never taken or that led to more than one state
func (v *VisitGraph) Path(start string, actions []string) []string {
	out := []string{start}
	cur := start
	for _, a := range actions {
		n, ok := v.Nodes[cur]
		if !ok || len(n.Next[a]) != 1 {
			break
		}
		for next := range n.Next[a] {
			cur = next
		}
		out = append(out, cur)
	}
	return out
}

func (v *VisitGraph) GetVisits() map[string]int {
	results := make(map[string]int)
	for k, n := range v.Nodes {
		results[k] = n.Visits
	}
	return results
}

func (v *VisitGraph) Len() int {
	return len(v.Nodes)
}

func (v *VisitGraph) Clear() {
	v.Nodes = make(map[string]*Node)
}

// Record writes the graph as JSON to filePath
func (v *VisitGraph) Record(filePath string) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return util.WriteToFile(filePath, string(bs))
}

type Node struct {
	Key      string `json:"key"`
	Visits   int    `json:"visits"`
	Terminal bool   `json:"terminal"`

	// Next, Prev: Each action can lead to many states
	Next map[string]map[string]bool `json:"next"`
	Prev map[string]map[string]bool `json:"prev"`
}

func NewNode(key string) *Node {
	return &Node{
		Key:    key,
		Visits: 0,
		Next:   make(map[string]map[string]bool),
		Prev:   make(map[string]map[string]bool),
	}
}

func (n *Node) AddPrev(a, prev string) {
	if _, ok := n.Prev[a]; !ok {
		n.Prev[a] = make(map[string]bool)
	}
	n.Prev[a][prev] = true
}

func (n *Node) AddNext(a, next string) {
	if _, ok := n.Next[a]; !ok {
		n.Next[a] = make(map[string]bool)
	}
	n.Next[a][next] = true
}

// ReadVisitGraph loads a graph written by Record
func ReadVisitGraph(filePath string) (*VisitGraph, error) {
	bs, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	v := NewVisitGraph()
	if err := json.Unmarshal(bs, v); err != nil {
		return nil, err
	}
	return v, nil
}
