package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration rejection.
var ErrInvalidConfig = errors.New("invalid simulation config")

//go:embed config.schema.json
var configSchema string

const configSchemaURL = "cyanosim-config.schema.json"

// Config is the immutable parameter record handed to New.
// Lengths are in µm, times in s, angles in radians.
type Config struct {
	// Population & domain
	NumFilaments   int     `json:"numFilaments" yaml:"numFilaments"`
	DomainSize     float64 `json:"domainSize" yaml:"domainSize"`
	NumSegments    int     `json:"numSegments" yaml:"numSegments"`
	FilamentLength float64 `json:"filamentLength" yaml:"filamentLength"`
	SpawnPadding   float64 `json:"spawnPadding" yaml:"spawnPadding"` // margin = FilamentLength + SpawnPadding

	// Self-propulsion & rotational diffusion
	V0Mean       float64 `json:"v0Mean" yaml:"v0Mean"`
	Tau          float64 `json:"tau" yaml:"tau"`
	DeltaKappa   float64 `json:"deltaKappa" yaml:"deltaKappa"`
	Dt           float64 `json:"dt" yaml:"dt"`
	ReversalRate float64 `json:"reversalRate" yaml:"reversalRate"`

	// Sliding / bonding
	SlideProbability      float64 `json:"slideProbability" yaml:"slideProbability"`
	SlideDistance         float64 `json:"slideDistance" yaml:"slideDistance"`
	SlideVelocity         float64 `json:"slideVelocity" yaml:"slideVelocity"`
	ParallelThreshold     float64 `json:"parallelThreshold" yaml:"parallelThreshold"`
	AntiparallelThreshold float64 `json:"antiparallelThreshold" yaml:"antiparallelThreshold"`

	// Nematic alignment
	AlignmentStrength float64 `json:"alignmentStrength" yaml:"alignmentStrength"`
	AlignmentRadius   float64 `json:"alignmentRadius" yaml:"alignmentRadius"` // 0 means SlideDistance

	// Heading smoothing
	Smoothing      bool    `json:"smoothing" yaml:"smoothing"`
	SmoothingAlpha float64 `json:"smoothingAlpha" yaml:"smoothingAlpha"`

	// Chain relaxation. RelaxFactor and RelaxIterations drive the fractional
	// length correction. Any BendingStiffness above 0 adds a bending pass that
	// places every point exactly one segment from its predecessor, which
	// overrides the fractional result, so RelaxFactor only shapes the chain
	// when BendingStiffness is 0.
	BendingStiffness float64 `json:"bendingStiffness" yaml:"bendingStiffness"`
	RelaxFactor      float64 `json:"relaxFactor" yaml:"relaxFactor"`
	RelaxIterations  int     `json:"relaxIterations" yaml:"relaxIterations"`

	// Diagnostics
	BlockSize float64 `json:"blockSize" yaml:"blockSize"`

	// Execution
	Workers int    `json:"workers" yaml:"workers"` // force phase goroutines, 0 or 1 is sequential
	Seed    uint64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns the parameter set of the reference cyanobacteria runs.
func DefaultConfig() *Config {
	return &Config{
		NumFilaments:          200,
		DomainSize:            100,
		NumSegments:           30,
		FilamentLength:        15,
		SpawnPadding:          5,
		V0Mean:                3.0,
		Tau:                   470,
		DeltaKappa:            340,
		Dt:                    0.2,
		ReversalRate:          0.01,
		SlideProbability:      0.04,
		SlideDistance:         3.0,
		SlideVelocity:         1.5,
		ParallelThreshold:     math.Pi / 4,
		AntiparallelThreshold: 3 * math.Pi / 4,
		AlignmentStrength:     0.02,
		Smoothing:             true,
		SmoothingAlpha:        0.2,
		BendingStiffness:      0.99,
		RelaxFactor:           0.5,
		RelaxIterations:       1,
		BlockSize:             10,
		Seed:                  1,
	}
}

// SegmentLength is the rest length between consecutive chain points.
func (c *Config) SegmentLength() float64 {
	return c.FilamentLength / float64(c.NumSegments)
}

// DOmega is the active rotational diffusion coefficient (v0·Δκ)²/τ.
func (c *Config) DOmega() float64 {
	if c.Tau == 0 {
		return 0
	}
	vk := c.V0Mean * c.DeltaKappa
	return vk * vk / c.Tau
}

// Margin is the minimum distance between a spawned head and the domain edge.
func (c *Config) Margin() float64 {
	return c.FilamentLength + c.SpawnPadding
}

// NeighborRadius is the radius used for alignment neighbours.
func (c *Config) NeighborRadius() float64 {
	if c.AlignmentRadius > 0 {
		return c.AlignmentRadius
	}
	return c.SlideDistance
}

// Validate checks every construction-time rule and reports all violations at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	inUnit := func(v float64) bool { return v >= 0 && v <= 1 }

	check(c.NumFilaments >= 0, "numFilaments must be >= 0, got %d", c.NumFilaments)
	check(c.DomainSize > 0, "domainSize must be > 0, got %v", c.DomainSize)
	check(c.NumSegments >= 2, "numSegments must be >= 2, got %d", c.NumSegments)
	check(c.FilamentLength > 0, "filamentLength must be > 0, got %v", c.FilamentLength)
	check(c.SpawnPadding >= 0, "spawnPadding must be >= 0, got %v", c.SpawnPadding)
	check(c.V0Mean >= 0, "v0Mean must be >= 0, got %v", c.V0Mean)
	check(c.Tau > 0 || c.DeltaKappa == 0, "tau must be > 0 when deltaKappa is set, got %v", c.Tau)
	check(c.Dt > 0, "dt must be > 0, got %v", c.Dt)
	check(c.ReversalRate >= 0, "reversalRate must be >= 0, got %v", c.ReversalRate)
	check(inUnit(c.SlideProbability), "slideProbability must be in [0,1], got %v", c.SlideProbability)
	check(c.SlideDistance >= 0, "slideDistance must be >= 0, got %v", c.SlideDistance)
	check(c.AlignmentRadius >= 0, "alignmentRadius must be >= 0, got %v", c.AlignmentRadius)
	check(c.ParallelThreshold >= 0 && c.ParallelThreshold <= c.AntiparallelThreshold && c.AntiparallelThreshold <= math.Pi,
		"thresholds must satisfy 0 <= parallel <= antiparallel <= π, got %v and %v", c.ParallelThreshold, c.AntiparallelThreshold)
	check(inUnit(c.SmoothingAlpha), "smoothingAlpha must be in [0,1], got %v", c.SmoothingAlpha)
	check(inUnit(c.BendingStiffness), "bendingStiffness must be in [0,1], got %v", c.BendingStiffness)
	check(c.RelaxFactor > 0 && c.RelaxFactor <= 1, "relaxFactor must be in (0,1], got %v", c.RelaxFactor)
	check(c.RelaxIterations >= 1, "relaxIterations must be >= 1, got %d", c.RelaxIterations)
	check(c.BlockSize > 0, "blockSize must be > 0, got %v", c.BlockSize)
	check(c.Workers >= 0, "workers must be >= 0, got %d", c.Workers)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// LoadConfig loads a JSON or YAML file, validates it against the embedded schema
// and overlays it on DefaultConfig.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Read Config File
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	// 2. Normalize YAML to JSON so a single schema covers both formats
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		raw, err = yamlToJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
	}

	return ParseConfig(raw)
}

// ParseConfig validates a JSON document against the schema and decodes it.
func ParseConfig(doc []byte) (*Config, error) {
	sch, err := jsonschema.CompileString(configSchemaURL, configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: schema validation failed: %w", ErrInvalidConfig, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(doc, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func yamlToJSON(in []byte) ([]byte, error) {
	var v interface{}
	if err := yaml.Unmarshal(in, &v); err != nil {
		return nil, err
	}
	if v == nil {
		v = map[string]interface{}{}
	}
	return json.Marshal(v)
}
