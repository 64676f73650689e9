package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/rl"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// VisitDataSet counts how often every cell was entered. Row 0 is drawn
// at the top.
type VisitDataSet struct {
	Visits [][]int
	Height int
	Width  int
}

var _ plotter.GridXYZ = &VisitDataSet{}

func NewVisitDataSet(rows, cols int) *VisitDataSet {
	d := &VisitDataSet{
		Visits: make([][]int, rows),
		Height: rows,
		Width:  cols,
	}
	for i := range d.Visits {
		d.Visits[i] = make([]int, cols)
	}
	return d
}

func (d *VisitDataSet) Dims() (int, int) {
	return d.Width, d.Height
}

func (d *VisitDataSet) Z(c, r int) float64 {
	return float64(d.Visits[d.Height-1-r][c])
}

func (d *VisitDataSet) X(c int) float64 {
	return float64(c)
}

func (d *VisitDataSet) Y(r int) float64 {
	return float64(r)
}

func (d *VisitDataSet) Min() float64 {
	return 0.0
}

func (d *VisitDataSet) Max() float64 {
	max := 0
	for _, row := range d.Visits {
		for _, count := range row {
			if count > max {
				max = count
			}
		}
	}
	return float64(max)
}

func (d *VisitDataSet) add(c grid.Coord) {
	if c.Row < 0 || c.Row >= d.Height || c.Col < 0 || c.Col >= d.Width {
		return
	}
	d.Visits[c.Row][c.Col] += 1
}

// MergeVisitDataSets sums the counts of grids of the same size
func MergeVisitDataSets(dataSets []rl.DataSet) *VisitDataSet {
	var merged *VisitDataSet
	for _, ds := range dataSets {
		d := ds.(*VisitDataSet)
		if merged == nil {
			merged = NewVisitDataSet(d.Height, d.Width)
		}
		for r := 0; r < d.Height && r < merged.Height; r++ {
			for c := 0; c < d.Width && c < merged.Width; c++ {
				merged.Visits[r][c] += d.Visits[r][c]
			}
		}
	}
	return merged
}

// VisitAnalyzer counts the cells entered over all episodes of a run
type VisitAnalyzer struct {
	rows, cols int
	data       *VisitDataSet
}

var _ rl.Analyzer = &VisitAnalyzer{}

func NewVisitAnalyzer(rows, cols int) *VisitAnalyzer {
	return &VisitAnalyzer{
		rows: rows,
		cols: cols,
		data: NewVisitDataSet(rows, cols),
	}
}

func (a *VisitAnalyzer) Analyze(_ int, _ int, _ string, trace *rl.Trace) {
	for _, c := range trace.Cells() {
		a.data.add(c)
	}
}

func (a *VisitAnalyzer) DataSet() rl.DataSet {
	return a.data
}

func (a *VisitAnalyzer) Reset() {
	a.data = NewVisitDataSet(a.rows, a.cols)
}

// VisitPlotComparator stores every experiment's visit counts as json and
// draws them as a heat map
func VisitPlotComparator(figPath string) rl.Comparator {
	if _, err := os.Stat(figPath); err != nil {
		os.MkdirAll(figPath, os.ModePerm)
	}
	return func(run int, names []string, ds []rl.DataSet) {
		for i := 0; i < len(names); i++ {
			name := strconv.Itoa(run) + "_" + names[i]
			data := ds[i].(*VisitDataSet)

			bs, _ := json.Marshal(data)
			os.WriteFile(path.Join(figPath, name+"_visits.json"), bs, 0644)

			if data.Max() == 0 {
				continue
			}
			p := plot.New()
			p.Title.Text = names[i]
			p.Add(plotter.NewHeatMap(data, palette.Heat(20, 1)))
			if err := p.Save(4*vg.Inch, 4*vg.Inch, path.Join(figPath, name+"_visits.png")); err != nil {
				fmt.Printf("could not save heat map: %s\n", err)
			}
		}
	}
}
