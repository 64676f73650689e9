package benchmarks

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeu5/subgoal-rl/grid"
)

var (
	mapFile string
	rows    int
	cols    int
)

func addGridFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&mapFile, "map", "", "Grid map (.gwmap) to load")
	cmd.PersistentFlags().IntVar(&rows, "rows", 20, "Rows of the default grid, ignored with --map")
	cmd.PersistentFlags().IntVar(&cols, "cols", 20, "Columns of the default grid, ignored with --map")
}

// ReadLayoutFile loads a map file
func ReadLayoutFile(path string) (*grid.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	l, err := grid.ReadLayout(f)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	return l, nil
}

// WriteLayoutFile saves a map file
func WriteLayoutFile(path string, l *grid.Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return l.Write(f)
}

func loadLayout() (*grid.Layout, error) {
	if mapFile == "" {
		return grid.New(rows, cols).Layout(), nil
	}
	return ReadLayoutFile(mapFile)
}
