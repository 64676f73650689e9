package rl

import "gonum.org/v1/gonum/stat"

// Convergence keeps the lengths of the last episodes. Training has
// converged once the window is full and the sample variance of the lengths
// is at most the threshold. A window of size zero never converges.
type Convergence struct {
	interval  int
	threshold float64
	window    []float64
}

func NewConvergence(interval int, threshold float64) *Convergence {
	if interval < 0 {
		interval = 0
	}
	return &Convergence{
		interval:  interval,
		threshold: threshold,
		window:    make([]float64, 0, interval),
	}
}

// Add records an episode length and reports convergence
func (c *Convergence) Add(length int) bool {
	if c.interval <= 0 {
		return false
	}
	if len(c.window) == c.interval {
		c.window = append(c.window[:0], c.window[1:]...)
	}
	c.window = append(c.window, float64(length))
	return c.Converged()
}

func (c *Convergence) Converged() bool {
	if c.interval < 2 || len(c.window) < c.interval {
		return false
	}
	return stat.Variance(c.window, nil) <= c.threshold
}

// Min is the shortest episode in the window
func (c *Convergence) Min() int {
	if len(c.window) == 0 {
		return 0
	}
	min := c.window[0]
	for _, v := range c.window[1:] {
		if v < min {
			min = v
		}
	}
	return int(min)
}

func (c *Convergence) Reset() {
	c.window = c.window[:0]
}
