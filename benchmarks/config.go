package benchmarks

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeu5/subgoal-rl/rl"
	"gopkg.in/yaml.v3"
)

// ReadParams reads learning parameters from yaml. Missing keys keep their
// default values.
func ReadParams(path string) (rl.Params, error) {
	params := rl.DefaultParams()
	if path == "" {
		return params, nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(bs, &params); err != nil {
		return params, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return params, nil
}

// loadParams reads the config file and applies the flags set on the
// command line on top of it
func loadParams(cmd *cobra.Command) (rl.Params, error) {
	params, err := ReadParams(configFile)
	if err != nil {
		return params, err
	}
	flags := cmd.Flags()
	if flags.Changed("episodes") {
		params.Episodes = episodes
		params.TrainUntilConvergence = false
	}
	if flags.Changed("seed") {
		params.Seed = seed
	}
	return params, params.Validate()
}
