// Package actionlog persists the tokens of the options taken during training.
// Primitive moves are logged as 1 to 4 (left, up, right, down), macro
// options by the coordinates of their subgoal.
package actionlog

import (
	"sync"

	"github.com/zeu5/subgoal-rl/rl"
	"github.com/zeu5/subgoal-rl/util"
)

// FileLog writes one token per line
type FileLog struct {
	path string
	lock sync.Mutex
}

var _ rl.ActionLog = &FileLog{}

func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

func (f *FileLog) Path() string {
	return f.path
}

func (f *FileLog) Append(tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	return util.AppendToFile(f.path, tokens...)
}

func (f *FileLog) Clear() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	return util.WriteToFile(f.path)
}
