package experiment

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wildfunctions/equation_evolution/pkg/engine"
	"github.com/wildfunctions/equation_evolution/pkg/equations"
	"github.com/wildfunctions/equation_evolution/pkg/fitness"
	"github.com/wildfunctions/equation_evolution/pkg/model"
	"github.com/wildfunctions/equation_evolution/pkg/storage"
	"github.com/wildfunctions/equation_evolution/pkg/strategy"
)

// Genome representations.
const (
	RepresentationDirect   = "direct"
	RepresentationGaussian = "gaussian"
)

// Evaluation modes.
const (
	EvaluationPoints   = "points"
	EvaluationIntegral = "integral"
)

// ErrInvalidConfig wraps every configuration problem reported by Validate.
var ErrInvalidConfig = errors.New("invalid experiment config")

var configValidate = validator.New()

// StoreConfig selects where checkpoints and run records go.
type StoreConfig struct {
	Backend string `yaml:"backend" json:"backend" validate:"omitempty,oneof=memory sqlite badger"`
	Path    string `yaml:"path" json:"path"`
}

// Config describes one creation and removal experiment.
type Config struct {
	Benign         string              `yaml:"benign" json:"benign" validate:"required"`
	BenignName     string              `yaml:"benign_name" json:"benign_name,omitempty"`
	Malware        string              `yaml:"malware" json:"malware" validate:"required"`
	MalwareName    string              `yaml:"malware_name" json:"malware_name,omitempty"`
	Representation string              `yaml:"representation" json:"representation" validate:"oneof=direct gaussian"`
	Evaluation     string              `yaml:"evaluation" json:"evaluation" validate:"oneof=points integral"`
	Pool           string              `yaml:"pool" json:"pool" validate:"required"`
	Weights        []float64           `yaml:"weights" json:"weights" validate:"len=2,dive,ne=0"`
	RemovalWeight  float64             `yaml:"removal_weight" json:"removal_weight" validate:"ne=0"`
	TestPoints     fitness.Range       `yaml:"test_points" json:"test_points"`
	Insertion      fitness.Interval    `yaml:"insertion" json:"insertion"`
	ParamRange     strategy.ParamRange `yaml:"param_range" json:"param_range"`
	InitHeightMin  int                 `yaml:"init_height_min" json:"init_height_min" validate:"gte=0"`
	InitHeightMax  int                 `yaml:"init_height_max" json:"init_height_max" validate:"gtefield=InitHeightMin"`
	SpecialRemoval bool                `yaml:"special_removal" json:"special_removal"`
	Creation       engine.Config       `yaml:"creation" json:"creation"`
	Removal        engine.Config       `yaml:"removal" json:"removal"`
	Store          StoreConfig         `yaml:"store" json:"store"`
}

// DefaultConfig inserts linear2 into linear1 on [-1, 1].
func DefaultConfig() Config {
	return Config{
		Benign:         "linear1",
		Malware:        "linear2",
		Representation: RepresentationDirect,
		Evaluation:     EvaluationPoints,
		Pool:           "trojan",
		Weights:        []float64{-2, -2},
		RemovalWeight:  -2,
		TestPoints:     fitness.DefaultRange(),
		Insertion:      fitness.DefaultInterval(),
		ParamRange:     strategy.DefaultParamRange(),
		InitHeightMin:  1,
		InitHeightMax:  2,
		Creation:       engine.DefaultConfig(),
		Removal:        engine.DefaultConfig(),
		Store:          StoreConfig{Backend: storage.BackendMemory},
	}
}

// Validate checks field ranges and cross-field constraints, including both
// phase configs.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Creation.Validate(); err != nil {
		return fmt.Errorf("%w: creation: %w", ErrInvalidConfig, err)
	}
	if err := c.Removal.Validate(); err != nil {
		return fmt.Errorf("%w: removal: %w", ErrInvalidConfig, err)
	}
	if c.SpecialRemoval && c.Evaluation == EvaluationIntegral {
		return fmt.Errorf("%w: special removal needs point evaluation", ErrInvalidConfig)
	}
	if c.Store.Backend != "" && c.Store.Backend != storage.BackendMemory && c.Store.Path == "" {
		return fmt.Errorf("%w: %s store needs a path", ErrInvalidConfig, c.Store.Backend)
	}
	return nil
}

// LoadFile reads a YAML config over the defaults. Catalog names are accepted
// in place of the benign and malware equations.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveEquations replaces catalog names in Benign and Malware by their
// equations. Empty display names default to the catalog name, or to the
// equation itself.
func (c *Config) ResolveEquations() {
	c.Benign, c.BenignName = resolve(c.Benign, c.BenignName)
	c.Malware, c.MalwareName = resolve(c.Malware, c.MalwareName)
}

func resolve(s, name string) (string, string) {
	eq, n := equations.Resolve(s)
	if name == "" {
		name = n
	}
	return eq, name
}

// ConfigOf recovers the config a stored run was started with.
func ConfigOf(run model.RunRecord) (Config, error) {
	cfg := DefaultConfig()
	if len(run.Config) == 0 {
		return cfg, fmt.Errorf("run %s has no stored config", run.ID)
	}
	if err := json.Unmarshal(run.Config, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config of run %s: %w", run.ID, err)
	}
	return cfg, nil
}
