package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/pursuitsim/internal/config"
	"github.com/san-kum/pursuitsim/internal/policy"
)

// loadConfig layers the config file (or defaults) under the command line.
// Without a config file every flag the command defines applies; with one,
// only flags set explicitly override it. World flags only apply when set so a
// preset is not clobbered by their defaults.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	changed := func(name string) bool {
		f := cmd.Flag(name)
		return f != nil && f.Changed
	}
	use := func(name string) bool {
		f := cmd.Flag(name)
		return f != nil && (configFile == "" || f.Changed)
	}

	if changed("preset") && preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
	}
	if changed("width") {
		cfg.World.Width = width
	}
	if changed("height") {
		cfg.World.Height = height
	}
	if changed("episode-steps") {
		cfg.World.EpisodeSteps = steps
	}

	if len(args) > 0 {
		cfg.Policy = args[0]
	}
	// Several commands bind the same vars with different defaults, so read
	// through this command's flag set.
	flags := cmd.Flags()
	if use("episodes") {
		cfg.Episodes, _ = flags.GetInt("episodes")
	}
	if use("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if use("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if use("record") {
		cfg.Record, _ = flags.GetBool("record")
	}
	if use("log-level") {
		cfg.LogLevel = logLevel
	}
	if use("data") {
		cfg.DataDir = dataDir
	}

	if cfg.PolicyParams == nil {
		cfg.PolicyParams = map[string]float64{}
	}
	params := map[string]*float64{"kp": &kp, "ki": &ki, "kd": &kd, "steer": &steer, "accel": &accel}
	for name, v := range params {
		if use(name) {
			cfg.PolicyParams[name] = *v
		}
	}
	if _, ok := cfg.PolicyParams["seed"]; !ok {
		cfg.PolicyParams["seed"] = float64(cfg.Seed)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(cmd *cobra.Command, args []string) (*config.Config, *logrus.Logger, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Logger(), nil
}

func newPolicy(cfg *config.Config) (policy.Policy, error) {
	return policy.NewRegistry().Get(cfg.Policy, cfg.World, cfg.PolicyParams)
}

// interruptible cancels on Ctrl-C so long rollouts stop between steps.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
