package engine

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig wraps every configuration problem reported by Validate.
var ErrInvalidConfig = errors.New("invalid engine config")

var configValidate = validator.New()

// Config holds the parameters of one evolution phase.
type Config struct {
	Population           int     `yaml:"population" json:"population" validate:"gte=1"`
	MaxGenerations       int     `yaml:"max_generations" json:"max_generations" validate:"gte=0"`
	CrossoverProbability float64 `yaml:"crossover_probability" json:"crossover_probability" validate:"gte=0,lte=1"`
	MutationProbability  float64 `yaml:"mutation_probability" json:"mutation_probability" validate:"gte=0,lte=1"`
	SubTreeHeightMin     int     `yaml:"subtree_height_min" json:"subtree_height_min" validate:"gte=0"`
	SubTreeHeightMax     int     `yaml:"subtree_height_max" json:"subtree_height_max" validate:"gtefield=SubTreeHeightMin"`
	MaxTreeHeight        int     `yaml:"max_tree_height" json:"max_tree_height" validate:"gte=1"`
	HallOfFameSize       int     `yaml:"hall_of_fame_size" json:"hall_of_fame_size" validate:"gte=1"`
	TargetError          float64 `yaml:"target_error" json:"target_error" validate:"gte=0"`
	EarlyStop            bool    `yaml:"early_stop" json:"early_stop"`
	Workers              int     `yaml:"workers" json:"workers" validate:"gte=0"`
	Seed                 uint64  `yaml:"seed" json:"seed"`
	CheckpointEvery      int     `yaml:"checkpoint_every" json:"checkpoint_every" validate:"gte=0"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Population:           300,
		MaxGenerations:       2000,
		CrossoverProbability: 0.5,
		MutationProbability:  0.1,
		SubTreeHeightMin:     1,
		SubTreeHeightMax:     3,
		MaxTreeHeight:        17,
		HallOfFameSize:       1,
		TargetError:          0.05,
		EarlyStop:            true,
		Workers:              runtime.NumCPU(),
		Seed:                 1,
	}
}

// Validate checks field ranges and cross-field constraints.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.SubTreeHeightMax > c.MaxTreeHeight {
		return fmt.Errorf("%w: subtree height max %d exceeds max tree height %d",
			ErrInvalidConfig, c.SubTreeHeightMax, c.MaxTreeHeight)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
