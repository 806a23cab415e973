package types

import (
	"fmt"
	"path"
	"strconv"

	"github.com/zeu5/gate-synth-rl/util"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SeriesAnalyzer records one value per episode
type SeriesAnalyzer struct {
	measure func(*Trace) float64
	series  []float64
}

var _ Analyzer = &SeriesAnalyzer{}

func NewSeriesAnalyzer(measure func(*Trace) float64) *SeriesAnalyzer {
	return &SeriesAnalyzer{
		measure: measure,
		series:  make([]float64, 0),
	}
}

func (s *SeriesAnalyzer) Analyze(_ int, _ int, _ string, t *Trace) {
	s.series = append(s.series, s.measure(t))
}

func (s *SeriesAnalyzer) DataSet() DataSet {
	out := make([]float64, len(s.series))
	copy(out, s.series)
	return out
}

func (s *SeriesAnalyzer) Reset() {
	s.series = make([]float64, 0)
}

// EpisodeLength counts the steps taken in every episode
func EpisodeLength() Analyzer {
	return NewSeriesAnalyzer(func(t *Trace) float64 {
		return float64(t.Len())
	})
}

// EpisodeReward sums the rewards collected in every episode
func EpisodeReward() Analyzer {
	return NewSeriesAnalyzer(func(t *Trace) float64 {
		return t.TotalReward()
	})
}

// PureCoverage tracks the number of distinct states seen so far, after every episode
type PureCoverage struct {
	uniqueStates    map[string]bool
	numUniqueStates []float64
}

var _ Analyzer = &PureCoverage{}

func NewPureCoverage() Analyzer {
	return &PureCoverage{
		uniqueStates:    make(map[string]bool),
		numUniqueStates: make([]float64, 0),
	}
}

func (p *PureCoverage) Analyze(_ int, _ int, _ string, t *Trace) {
	for j := 0; j < t.Len(); j++ {
		s, _, ns, _ := t.Get(j)
		p.uniqueStates[s.Hash()] = true
		p.uniqueStates[ns.Hash()] = true
	}
	p.numUniqueStates = append(p.numUniqueStates, float64(len(p.uniqueStates)))
}

func (p *PureCoverage) DataSet() DataSet {
	out := make([]float64, len(p.numUniqueStates))
	copy(out, p.numUniqueStates)
	return out
}

func (p *PureCoverage) Reset() {
	p.uniqueStates = make(map[string]bool)
	p.numUniqueStates = make([]float64, 0)
}

// SeriesPlotter draws one line per experiment for []float64 datasets and
// saves it as <run>_<suffix>.png under plotPath
func SeriesPlotter(plotPath, yLabel, suffix string) Comparator {
	util.EnsureDir(plotPath)
	return func(run int, _ int, names []string, ds []DataSet) {
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = yLabel
		for i := 0; i < len(names); i++ {
			series, ok := ds[i].([]float64)
			if !ok || len(series) == 0 {
				continue
			}
			points := make(plotter.XYs, len(series))
			for j, v := range series {
				points[j] = plotter.XY{
					X: float64(j),
					Y: v,
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
			fmt.Printf("%s: %.2f for benchmark: %s\n", yLabel, series[len(series)-1], names[i])
		}
		p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_"+suffix+".png"))
	}
}
