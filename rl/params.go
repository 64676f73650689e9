package rl

import (
	"errors"
	"fmt"

	"github.com/zeu5/subgoal-rl/explore"
	"github.com/zeu5/subgoal-rl/grid"
)

var (
	ErrInvalidParams  = errors.New("invalid parameters")
	ErrMissingStart   = errors.New("start cell is not set")
	ErrMissingGoal    = errors.New("goal cell is not set")
	ErrTrainingActive = errors.New("training is already running")
	ErrNoOptions      = errors.New("cell has no options")
)

// DecayMode says when epsilon decays
type DecayMode string

const (
	DecayPerStep    DecayMode = "step"
	DecayPerEpisode DecayMode = "episode"
)

type Params struct {
	Alpha    float64 `yaml:"alpha"`
	Discount float64 `yaml:"discount"`

	MaxEpsilon   float64   `yaml:"max_epsilon"`
	MinEpsilon   float64   `yaml:"min_epsilon"`
	EpsilonDecay float64   `yaml:"epsilon_decay"`
	DecayMode    DecayMode `yaml:"decay_mode"`

	// prioritized sweeping
	PriorityThreshold float64 `yaml:"priority_threshold"`
	NumOfUpdates      int     `yaml:"num_of_updates"`

	// Episodes is the budget when not training until convergence
	Episodes              int     `yaml:"episodes"`
	TrainUntilConvergence bool    `yaml:"train_until_convergence"`
	ConvergenceInterval   int     `yaml:"convergence_interval"`
	VarianceThreshold     float64 `yaml:"variance_threshold"`
	// MaxEpisodes caps a run that trains until convergence, 0 for no cap
	MaxEpisodes int `yaml:"max_episodes"`

	GoalReward float64 `yaml:"goal_reward"`
	// Horizon caps the steps of an episode, 0 for no cap
	Horizon int `yaml:"horizon"`
	// Seed of the option choice, 0 picks one from the clock
	Seed uint64 `yaml:"seed"`
	// ResetLearning discards values, options and the exploration graph
	// before every run. The first run always starts fresh.
	ResetLearning bool `yaml:"reset_learning"`

	// completed episodes before subgoal discovery starts
	DiscoveryStartEpisode int            `yaml:"discovery_start_episode"`
	Discovery             explore.Params `yaml:"discovery"`
}

func DefaultParams() Params {
	return Params{
		Alpha:                 0.2,
		Discount:              0.9,
		MaxEpsilon:            0.35,
		MinEpsilon:            0.00001,
		EpsilonDecay:          0.99992,
		DecayMode:             DecayPerEpisode,
		PriorityThreshold:     1e-10,
		NumOfUpdates:          15,
		Episodes:              1000,
		TrainUntilConvergence: true,
		ConvergenceInterval:   15,
		VarianceThreshold:     0.3,
		GoalReward:            grid.DefaultGoalReward,
		ResetLearning:         true,
		DiscoveryStartEpisode: 5,
		Discovery:             explore.DefaultParams(),
	}
}

func (p Params) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
	}
	if p.Alpha <= 0 || p.Alpha > 1 {
		return invalid("alpha %v must be in (0, 1]", p.Alpha)
	}
	if p.Discount < 0 || p.Discount > 1 {
		return invalid("discount %v must be in [0, 1]", p.Discount)
	}
	if p.MinEpsilon < 0 || p.MaxEpsilon > 1 || p.MinEpsilon > p.MaxEpsilon {
		return invalid("epsilon bounds [%v, %v]", p.MinEpsilon, p.MaxEpsilon)
	}
	if p.EpsilonDecay <= 0 || p.EpsilonDecay > 1 {
		return invalid("epsilon decay %v must be in (0, 1]", p.EpsilonDecay)
	}
	if p.DecayMode != DecayPerStep && p.DecayMode != DecayPerEpisode {
		return invalid("unknown decay mode %q", p.DecayMode)
	}
	if p.NumOfUpdates < 0 || p.PriorityThreshold < 0 {
		return invalid("sweep updates and priority threshold must be non-negative")
	}
	if p.ConvergenceInterval < 1 {
		return invalid("convergence interval %d must be positive", p.ConvergenceInterval)
	}
	if p.TrainUntilConvergence {
		if p.ConvergenceInterval < 2 {
			return invalid("convergence interval %d must be at least 2", p.ConvergenceInterval)
		}
		if p.VarianceThreshold < 0 {
			return invalid("variance threshold %v must be non-negative", p.VarianceThreshold)
		}
	} else if p.Episodes < 1 {
		return invalid("episodes %d must be positive", p.Episodes)
	}
	if p.Horizon < 0 || p.MaxEpisodes < 0 || p.DiscoveryStartEpisode < 0 {
		return invalid("horizon, episode cap and discovery start must be non-negative")
	}
	if err := p.Discovery.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParams, err)
	}
	return nil
}
