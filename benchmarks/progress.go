package benchmarks

import (
	"fmt"
	"sync"
	"time"

	"github.com/gosuri/uilive"
	"github.com/zeu5/subgoal-rl/rl"
)

// progress prints the latest episode of a trainer on one live line
type progress struct {
	mu     sync.Mutex
	label  string
	writer *uilive.Writer
	total  int
}

func newProgress(label string) *progress {
	writer := uilive.New()
	writer.RefreshInterval = 200 * time.Millisecond
	return &progress{
		label:  label,
		writer: writer,
	}
}

func (p *progress) Start() {
	p.writer.Start()
}

// Update is meant for rl.Trainer.OnEpisode
func (p *progress) Update(info rl.EpisodeInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total += info.Length
	fmt.Fprintf(p.writer, "%s: episode %d, %d actions (%d total), epsilon %.5f\n",
		p.label, info.Episode, info.Length, p.total, info.Epsilon)
}

func (p *progress) Stop() {
	p.writer.Stop()
}
