// Package config loads the two-tier orchestrator's configuration from
// layered sources — built-in defaults, an optional YAML file, then
// environment overrides — producing one immutable value at the system
// boundary. Core packages never read the environment themselves.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amancerp/hybridsearch/orchestrator"
)

// fileConfig is the YAML schema; all fields are optional and only
// override the running default when present.
type fileConfig struct {
	QualityWeight      *float64 `yaml:"quality_weight"`
	RRFConstant        *float64 `yaml:"rrf_k"`
	FastOnly           *bool    `yaml:"fast_only"`
	QualityTimeoutMs   *int     `yaml:"quality_timeout_ms"`
}

// Warning records a configuration value that was out of range and was
// replaced by its default.
type Warning struct {
	Key   string
	Value string
	Msg   string
}

func (w Warning) String() string {
	return fmt.Sprintf("config: %s=%q invalid: %s; using default", w.Key, w.Value, w.Msg)
}

// Load builds a Config by merging, in order: orchestrator.DefaultConfig(),
// "<dir>/.hybridsearch.yaml" if present, then environment variables
// (HYBRIDSEARCH_QUALITY_WEIGHT, HYBRIDSEARCH_RRF_K, HYBRIDSEARCH_FAST_ONLY,
// HYBRIDSEARCH_QUALITY_TIMEOUT_MS). An out-of-range or unparsable
// environment value is replaced by its default and appended to the returned
// warning list rather than failing the load. Values read from the YAML file
// are applied as given: they are not range-checked and produce no warnings.
func Load(dir string) (orchestrator.Config, []Warning, error) {
	cfg := orchestrator.DefaultConfig()
	var warnings []Warning

	fc, err := loadFile(dir)
	if err != nil {
		return cfg, warnings, err
	}
	if fc != nil {
		mergeFile(&cfg, fc)
	}

	applyEnv(&cfg, &warnings)

	return cfg, warnings, nil
}

func loadFile(dir string) (*fileConfig, error) {
	for _, name := range []string{".hybridsearch.yaml", ".hybridsearch.yml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
		return &fc, nil
	}
	return nil, nil
}

func mergeFile(cfg *orchestrator.Config, fc *fileConfig) {
	if fc.QualityWeight != nil {
		cfg.QualityWeight = *fc.QualityWeight
	}
	if fc.RRFConstant != nil {
		cfg.RRFK = *fc.RRFConstant
	}
	if fc.FastOnly != nil {
		cfg.FastOnly = *fc.FastOnly
	}
	if fc.QualityTimeoutMs != nil {
		cfg.QualityTimeout = msToDuration(*fc.QualityTimeoutMs)
	}
}

func applyEnv(cfg *orchestrator.Config, warnings *[]Warning) {
	def := orchestrator.DefaultConfig()
	if raw, ok := os.LookupEnv("HYBRIDSEARCH_QUALITY_WEIGHT"); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 1 {
			cfg.QualityWeight = v
		} else {
			cfg.QualityWeight = def.QualityWeight
			*warnings = append(*warnings, Warning{Key: "quality_weight", Value: raw, Msg: "must be in [0,1]"})
		}
	}
	if raw, ok := os.LookupEnv("HYBRIDSEARCH_RRF_K"); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			cfg.RRFK = v
		} else {
			cfg.RRFK = def.RRFK
			*warnings = append(*warnings, Warning{Key: "rrf_k", Value: raw, Msg: "must be > 0"})
		}
	}
	if raw, ok := os.LookupEnv("HYBRIDSEARCH_FAST_ONLY"); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			cfg.FastOnly = v
		} else {
			cfg.FastOnly = def.FastOnly
			*warnings = append(*warnings, Warning{Key: "fast_only", Value: raw, Msg: "must be a boolean"})
		}
	}
	if raw, ok := os.LookupEnv("HYBRIDSEARCH_QUALITY_TIMEOUT_MS"); ok {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			cfg.QualityTimeout = msToDuration(v)
		} else {
			cfg.QualityTimeout = def.QualityTimeout
			*warnings = append(*warnings, Warning{Key: "quality_timeout_ms", Value: raw, Msg: "must be >= 0"})
		}
	}
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
