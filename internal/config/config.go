package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

const (
	DefaultPolicy   = "follow"
	DefaultEpisodes = 5
	DefaultWorkers  = 1
	DefaultLogLevel = "info"
	DefaultDataDir  = ".pursuitsim"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Preset       string              `yaml:"preset,omitempty"`
	World        pursuit.WorldConfig `yaml:"world"`
	Policy       string              `yaml:"policy"`
	PolicyParams map[string]float64  `yaml:"policy_params,omitempty"`
	Episodes     int                 `yaml:"episodes"`
	Seed         int64               `yaml:"seed"`
	Workers      int                 `yaml:"workers"`
	Record       bool                `yaml:"record"`
	LogLevel     string              `yaml:"log_level"`
	DataDir      string              `yaml:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		World:        pursuit.DefaultWorld(pursuit.DefaultWidth, pursuit.DefaultHeight),
		Policy:       DefaultPolicy,
		PolicyParams: map[string]float64{},
		Episodes:     DefaultEpisodes,
		Workers:      DefaultWorkers,
		Record:       true,
		LogLevel:     DefaultLogLevel,
		DataDir:      DefaultDataDir,
	}
}

// Load reads a yaml config over the defaults. A named preset replaces the
// default world first; explicit world keys in the file still win over it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Preset != "" {
		if err := cfg.ApplyPreset(cfg.Preset); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) ApplyPreset(name string) error {
	w := GetPreset(name)
	if w == nil {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
	}
	c.Preset = name
	c.World = *w
	return nil
}

func (c *Config) Validate() error {
	if err := c.World.Validate(); err != nil {
		return err
	}
	if c.Policy == "" {
		return fmt.Errorf("%w: policy is empty", ErrInvalidConfig)
	}
	if c.Episodes <= 0 {
		return fmt.Errorf("%w: episodes must be positive, got %d", ErrInvalidConfig, c.Episodes)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Logger builds the process logger at the configured level.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	return log
}
