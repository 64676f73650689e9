package actionlog

import (
	"context"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/rl"
)

func lines(t *testing.T, p string) []string {
	bs, err := os.ReadFile(p)
	require.NoError(t, err)
	return strings.Fields(string(bs))
}

func TestFileLog(t *testing.T) {
	p := path.Join(t.TempDir(), "actions.txt")
	log := NewFileLog(p)

	require.NoError(t, log.Append("1", "3"))
	require.NoError(t, log.Append("2_4"))
	require.NoError(t, log.Append())
	assert.Equal(t, []string{"1", "3", "2_4"}, lines(t, p))

	require.NoError(t, log.Clear())
	assert.Empty(t, lines(t, p))
}

func TestFileLogRecordsTraining(t *testing.T) {
	p := path.Join(t.TempDir(), "actions.txt")
	params := rl.DefaultParams()
	params.TrainUntilConvergence = false
	params.Episodes = 10
	params.Seed = 5

	trainer := rl.NewTrainer(grid.New(3, 3), rl.NewQLearning(), params)
	trainer.SetActionLog(NewFileLog(p))
	res, err := trainer.Run(context.Background())
	require.NoError(t, err)

	tokens := lines(t, p)
	assert.Len(t, tokens, res.Actions)
	for _, tok := range tokens {
		assert.Contains(t, []string{"1", "2", "3", "4"}, tok)
	}
}
