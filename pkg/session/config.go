package session

import (
	"crypto/sha256"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cornmazecad/engine/pkg/constraints"
	"github.com/cornmazecad/engine/pkg/rows"
)

// Config bundles every configuration tuple a session needs, loadable from
// YAML: struct tags for both yaml and json, a Validate method, and a Hash
// helper. The flow simulator is seeded from FlowSeed alone and does not use
// Hash.
type Config struct {
	Rows        rows.Config        `yaml:"rows" json:"rows"`
	Constraints constraints.Config `yaml:"constraints" json:"constraints"`
	Resolution  float64            `yaml:"resolution" json:"resolution"` // walkability grid cell size, metres
	MaxExitDist float64            `yaml:"maxExitDistance" json:"maxExitDistance"`
	FlowSeed    uint64             `yaml:"flowSeed" json:"flowSeed"`
	FlowCount   int                `yaml:"flowVisitorCount" json:"flowVisitorCount"`
}

// DefaultConfig returns the §6 defaults plus sensible raster/flow values.
func DefaultConfig() Config {
	return Config{
		Rows: rows.Config{
			SpacingM:       0.762,
			DirectionDeg:   0,
			HeadlandInsetM: 0,
		},
		Constraints: constraints.DefaultConfig(),
		Resolution:  1.0,
		MaxExitDist: 50,
		FlowSeed:    1,
		FlowCount:   200,
	}
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes parses YAML configuration from a byte slice.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks every field against the bounds §3/§6 describe.
func (c *Config) Validate() error {
	if c.Rows.SpacingM <= 0 {
		return fmt.Errorf("rows.spacing must be > 0, got %g", c.Rows.SpacingM)
	}
	if c.Rows.HeadlandInsetM < 0 {
		return fmt.Errorf("rows.headlandInset must be >= 0, got %g", c.Rows.HeadlandInsetM)
	}
	if c.Constraints.MinPathWidth <= 0 {
		return fmt.Errorf("constraints.minPathWidth must be > 0, got %g", c.Constraints.MinPathWidth)
	}
	if c.Constraints.MinWallWidth <= 0 {
		return fmt.Errorf("constraints.minWallWidth must be > 0, got %g", c.Constraints.MinWallWidth)
	}
	if c.Resolution <= 0 {
		return fmt.Errorf("resolution must be > 0, got %g", c.Resolution)
	}
	if c.MaxExitDist <= 0 {
		return fmt.Errorf("maxExitDistance must be > 0, got %g", c.MaxExitDist)
	}
	if c.FlowCount < 0 {
		return fmt.Errorf("flowVisitorCount must be >= 0, got %d", c.FlowCount)
	}
	return nil
}

// ToYAML serializes c back to YAML.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Hash computes a deterministic SHA-256 hash of the configuration's YAML
// form, suitable as the configHash input to pkg/rng's per-stage seed
// derivation; pkg/flow does not use it and derives its RNG with a nil
// config hash.
func (c *Config) Hash() []byte {
	data, err := c.ToYAML()
	if err != nil {
		h := sha256.New()
		h.Write([]byte(fmt.Sprintf("%v", c)))
		return h.Sum(nil)
	}
	h := sha256.New()
	h.Write(data)
	return h.Sum(nil)
}
