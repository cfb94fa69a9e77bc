// Package config layers simulation settings from a YAML file, .env files and
// the environment on top of the built-in defaults.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/samdwyer/terrainwalk/internal/sim"
	"github.com/samdwyer/terrainwalk/internal/world"
)

// ErrInvalid is wrapped by every error caused by bad configuration input.
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TERRAINWALK_"

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("terrainwalk.schema.json", schemaJSON)

// File is the YAML form of the configuration. Absent keys keep the value
// from the layer below.
type File struct {
	Seed               *int64                `yaml:"seed"`
	TileWidth          *int                  `yaml:"tile_width"`
	StartTile          *world.TileCoordinate `yaml:"start_tile"`
	RetentionRingWidth *int                  `yaml:"retention_ring_width"`
	Terrain            struct {
		MaxHeight      *float64 `yaml:"max_height"`
		NoiseFrequency *float64 `yaml:"noise_frequency"`
	} `yaml:"terrain"`
	Walker struct {
		MinSampleDistance           *float64 `yaml:"min_sample_distance"`
		MaxSampleDistance           *float64 `yaml:"max_sample_distance"`
		DirectionalToleranceRadians *float64 `yaml:"directional_tolerance_radians"`
		VerticalPathOffset          *float64 `yaml:"vertical_path_offset"`
		InitialSegments             *int     `yaml:"initial_segments"`
	} `yaml:"walker"`
	Smoothing struct {
		WindowSize   *int `yaml:"window_size"`
		CurveSamples *int `yaml:"curve_samples"`
	} `yaml:"smoothing"`
	Follower struct {
		CursorStart *int `yaml:"cursor_start"`
		CursorEnd   *int `yaml:"cursor_end"`
	} `yaml:"follower"`
	StepInterval  *string `yaml:"step_interval"`
	ProbeRecenter *bool   `yaml:"probe_recenter"`
}

// Sources names where settings come from. Every field is optional.
type Sources struct {
	// File is a YAML configuration file.
	File string
	// EnvFiles are .env files; missing ones are skipped. Variables already
	// set in the environment win over .env values.
	EnvFiles []string
	// Lookup reads the environment. It defaults to os.LookupEnv.
	Lookup func(key string) (string, bool)
}

// Load applies every source on top of base and validates the result.
func Load(base sim.Config, src Sources) (sim.Config, error) {
	cfg := base

	if src.File != "" {
		raw, err := os.ReadFile(src.File)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := ApplyYAML(&cfg, raw); err != nil {
			return cfg, fmt.Errorf("%s: %w", src.File, err)
		}
	}

	lookup := src.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	dotenv, err := readEnvFiles(src.EnvFiles)
	if err != nil {
		return cfg, err
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := ApplyEnv(&cfg, env); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return cfg, nil
}

func readEnvFiles(paths []string) (map[string]string, error) {
	merged := map[string]string{}
	for _, p := range paths {
		values, err := godotenv.Read(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		for k, v := range values {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// ApplyYAML validates raw against the configuration schema and applies the
// keys it sets to cfg.
func ApplyYAML(cfg *sim.Config, raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if doc == nil {
		return nil
	}

	// The schema validator expects JSON values.
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	var instance any
	if err := json.Unmarshal(js, &instance); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return f.apply(cfg)
}

func (f *File) apply(cfg *sim.Config) error {
	setInt64(&cfg.Seed, f.Seed)
	setInt(&cfg.TileWidth, f.TileWidth)
	if f.StartTile != nil {
		cfg.StartTile = *f.StartTile
	}
	setInt(&cfg.RetentionRingWidth, f.RetentionRingWidth)
	setFloat(&cfg.MaxHeight, f.Terrain.MaxHeight)
	setFloat(&cfg.NoiseFrequency, f.Terrain.NoiseFrequency)
	setFloat(&cfg.MinSampleDistance, f.Walker.MinSampleDistance)
	setFloat(&cfg.MaxSampleDistance, f.Walker.MaxSampleDistance)
	setFloat(&cfg.DirectionalToleranceRadians, f.Walker.DirectionalToleranceRadians)
	setFloat(&cfg.VerticalPathOffset, f.Walker.VerticalPathOffset)
	setInt(&cfg.InitialSegments, f.Walker.InitialSegments)
	setInt(&cfg.SmoothingWindowSize, f.Smoothing.WindowSize)
	setInt(&cfg.CurveSampleCount, f.Smoothing.CurveSamples)
	setInt(&cfg.CursorStart, f.Follower.CursorStart)
	setInt(&cfg.CursorEnd, f.Follower.CursorEnd)
	if f.StepInterval != nil {
		d, err := time.ParseDuration(*f.StepInterval)
		if err != nil {
			return fmt.Errorf("%w: step_interval: %w", ErrInvalid, err)
		}
		cfg.StepInterval = d
	}
	if f.ProbeRecenter != nil {
		cfg.ProbeRecenter = *f.ProbeRecenter
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setInt64(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// ApplyEnv applies TERRAINWALK_* overrides read through lookup.
func ApplyEnv(cfg *sim.Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return envError("SEED", err)
		}
		cfg.Seed = n
	}
	if v, ok := get("TILE_WIDTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("TILE_WIDTH", err)
		}
		cfg.TileWidth = n
	}
	if v, ok := get("START_TILE"); ok {
		c, err := world.ParseTileCoordinate(v)
		if err != nil {
			return envError("START_TILE", err)
		}
		cfg.StartTile = c
	}
	if v, ok := get("STEP_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("STEP_INTERVAL", err)
		}
		cfg.StepInterval = d
	}
	if v, ok := get("PROBE_RECENTER"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("PROBE_RECENTER", err)
		}
		cfg.ProbeRecenter = b
	}
	return nil
}

func envError(name string, err error) error {
	return fmt.Errorf("%w: %s%s: %w", ErrInvalid, EnvPrefix, name, err)
}
