package analysis

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/zeu5/subgoal-rl/rl"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// EpisodeDataSet holds per episode statistics of one run
type EpisodeDataSet struct {
	Lengths []int
	// Macro counts the macro options taken in each episode
	Macro []int
}

// EpisodeAnalyzer records the length of every episode
type EpisodeAnalyzer struct {
	data *EpisodeDataSet
}

var _ rl.Analyzer = &EpisodeAnalyzer{}

func NewEpisodeAnalyzer() *EpisodeAnalyzer {
	a := &EpisodeAnalyzer{}
	a.Reset()
	return a
}

func (a *EpisodeAnalyzer) Analyze(_ int, _ int, _ string, trace *rl.Trace) {
	macro := 0
	for i := 0; i < trace.Len(); i++ {
		if s, _ := trace.Get(i); s.Macro {
			macro += 1
		}
	}
	a.data.Lengths = append(a.data.Lengths, trace.Len())
	a.data.Macro = append(a.data.Macro, macro)
}

func (a *EpisodeAnalyzer) DataSet() rl.DataSet {
	return a.data
}

func (a *EpisodeAnalyzer) Reset() {
	a.data = &EpisodeDataSet{
		Lengths: make([]int, 0),
		Macro:   make([]int, 0),
	}
}

// EpisodeLengthPlotter draws the episode lengths of every experiment of a
// run in one plot
func EpisodeLengthPlotter(plotPath string) rl.Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return func(run int, names []string, ds []rl.DataSet) {
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "Actions"
		for i := 0; i < len(names); i++ {
			data := ds[i].(*EpisodeDataSet)
			points := make(plotter.XYs, len(data.Lengths))
			for j, v := range data.Lengths {
				points[j] = plotter.XY{
					X: float64(j + 1),
					Y: float64(v),
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
			if n := len(data.Lengths); n > 0 {
				fmt.Printf("Last episode: %d actions for %s\n", data.Lengths[n-1], names[i])
			}
		}
		if err := p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_episode_lengths.png")); err != nil {
			fmt.Printf("could not save plot: %s\n", err)
		}
	}
}
