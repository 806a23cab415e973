// Package explorer is an interactive terminal player for the gate
// synthesis environment, with replay of recorded traces.
package explorer

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/zeu5/gate-synth-rl/gatesynth"
	"github.com/zeu5/gate-synth-rl/types"
)

// RecordedTrace is the action sequence of one recorded episode
type RecordedTrace struct {
	States  []string  `json:"states"`
	Actions []string  `json:"actions"`
	Rewards []float64 `json:"rewards"`
}

func (t *RecordedTrace) Indices() ([]int, error) {
	out := make([]int, len(t.Actions))
	for i, a := range t.Actions {
		index, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("action %q is not an index: %w", a, err)
		}
		out[i] = index
	}
	return out, nil
}

type Player struct {
	env    *gatesynth.Environment
	Traces []*RecordedTrace
	// states visited in recorded runs, annotates replays when set
	Graph  *types.VisitGraph

	in  *bufio.Reader
	out io.Writer
}

func NewPlayer(env *gatesynth.Environment, in io.Reader, out io.Writer) *Player {
	return &Player{
		env:    env,
		Traces: make([]*RecordedTrace, 0),
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// ReadTraces loads the traces recorded by an experiment, one JSON object per line
func ReadTraces(path string) ([]*RecordedTrace, error) {
	traces := make([]*RecordedTrace, 0)
	file, err := os.Open(path)
	if err != nil {
		return traces, fmt.Errorf("error reading file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	maxTraceSize := 5 * 1024 * 1024
	scanner.Buffer(make([]byte, maxTraceSize), maxTraceSize)
	for scanner.Scan() {
		bs := scanner.Bytes()
		if len(strings.TrimSpace(string(bs))) == 0 {
			continue
		}
		t := &RecordedTrace{}
		if err := json.Unmarshal(bs, t); err != nil {
			return traces, fmt.Errorf("error reading file contents: %w", err)
		}
		if len(t.Rewards) != len(t.Actions) {
			return traces, errors.New("number of actions and rewards mismatched")
		}
		traces = append(traces, t)
	}
	if err := scanner.Err(); err != nil {
		return traces, fmt.Errorf("failed to read traces: %w", err)
	}
	return traces, nil
}

func (p *Player) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (len(line) == 0 || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Player) readInt(prompt string) (int, bool, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.readLine()
	if errors.Is(err, io.EOF) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	v, err := strconv.Atoi(line)
	if err != nil {
		fmt.Fprintln(p.out, "Invalid input! Not a number. Try again")
		return 0, false, nil
	}
	return v, true, nil
}

// Interact runs the menu loop until the player quits or the input ends
func (p *Player) Interact() error {
	fmt.Fprint(p.out, p.header())
	for {
		fmt.Fprint(p.out, p.prompt())
		line, err := p.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		option, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(p.out, "Invalid input! Try again")
			continue
		}
		fmt.Fprintln(p.out, "------------------------------------")
		switch option {
		case 1:
			fmt.Fprint(p.out, p.actions())
		case 2:
			index, ok, err := p.readInt("Enter the action index: ")
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprint(p.out, p.step(index))
			}
		case 3:
			fmt.Fprintln(p.out, p.env.Render())
		case 4:
			p.env.Reset()
			fmt.Fprintln(p.out, "Environment reset")
		case 5:
			fmt.Fprint(p.out, p.history())
		case 6:
			if len(p.Traces) == 0 {
				fmt.Fprintln(p.out, "No traces loaded")
				continue
			}
			traceNo, ok, err := p.readInt(fmt.Sprintf("Enter trace number (1-%d): ", len(p.Traces)))
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if traceNo < 1 || traceNo > len(p.Traces) {
				fmt.Fprintf(p.out, "Invalid input! Should be between (1-%d). Try again\n", len(p.Traces))
				continue
			}
			fmt.Fprint(p.out, p.replay(p.Traces[traceNo-1]))
		case 7:
			fmt.Fprintln(p.out, "Quitting! Thank you")
			return nil
		default:
			fmt.Fprintln(p.out, "Wrong choice! Try again!")
		}
	}
}

func (p *Player) actions() string {
	var b strings.Builder
	b.WriteString("Actions are:\n")
	for _, i := range p.env.LegalActions() {
		s, _ := p.env.ActionToString(i)
		b.WriteString(s + "\n")
	}
	return b.String()
}

func (p *Player) step(index int) string {
	_, reward, done, err := p.env.Step(index)
	if err != nil {
		return fmt.Sprintf("Cannot apply action: %s\n", err)
	}
	desc, _ := p.env.ActionToString(index)
	out := fmt.Sprintf("Applied %s\nReward: %g, Done: %t, Distance: %.6f\n", desc, reward, done, p.env.Distance())
	switch p.env.Status() {
	case gatesynth.Won:
		out += "Target reached!\n"
	case gatesynth.Exhausted:
		out += "Out of steps, reset to play again\n"
	}
	return out
}

func (p *Player) history() string {
	h := p.env.DistanceHistory()
	if len(h) == 0 {
		return "No steps taken yet\n"
	}
	var b strings.Builder
	b.WriteString("Distance after every step:\n")
	for i, d := range h {
		fmt.Fprintf(&b, "%d: %.6f\n", i+1, d)
	}
	return b.String()
}

// replay resets the environment and applies the recorded actions in order
func (p *Player) replay(t *RecordedTrace) string {
	indices, err := t.Indices()
	if err != nil {
		return fmt.Sprintf("Cannot replay trace: %s\n", err)
	}
	p.env.Reset()
	var b strings.Builder
	for i, index := range indices {
		fmt.Fprintf(&b, "Step %d: ", i+1)
		b.WriteString(p.step(index))
		if p.Graph != nil {
			b.WriteString(p.graphInfo())
		}
		if p.env.Status() != gatesynth.Running {
			break
		}
	}
	return b.String()
}

func (p *Player) graphInfo() string {
	n, ok := p.Graph.Nodes[p.env.Observation().Hash()]
	if !ok {
		return "State not in the visit graph\n"
	}
	return fmt.Sprintf("State visited %d times, terminal: %t\n", n.Visits, n.Terminal)
}

func (p *Player) header() string {
	return fmt.Sprintf(`
Welcome to the gate synthesis player!
Qubits: %d, Actions: %d, Max steps: %d
`, p.env.Qubits(), p.env.Catalog().Len(), p.env.MaxSteps())
}

func (p *Player) prompt() string {
	return `
------------------------------------
Select one of the following options:
1. Show actions
2. Apply an action
3. Show current operator
4. Reset
5. Show distance history
6. Replay a trace
7. Quit
Enter your choice: `
}
