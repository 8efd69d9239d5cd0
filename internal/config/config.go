// Package config provides configuration management for the session gate.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (SESSIONGATE_*)
// 3. Project config (.sessiongate/config.yaml in cwd)
// 4. Home config (~/.sessiongate/config.yaml)
// 5. Defaults
//
// The configuration surface is loaded once per process and never mutated at
// runtime.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nicsuzor/sessiongate/internal/gate"
)

// Config holds all session gate configuration.
type Config struct {
	// Output controls the default output format (table, json, yaml).
	Output string `yaml:"output" json:"output"`

	// BaseDir is the data directory for session records and logs
	// (default: .agents/sg).
	BaseDir string `yaml:"base_dir" json:"base_dir"`

	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Mode is the enforcement mode: "warn" or "block".
	Mode string `yaml:"mode" json:"mode"`

	// AuditThreshold is the tool-call count that forces a compliance
	// pause before the next mutating action (default: 15).
	AuditThreshold int `yaml:"audit_threshold" json:"audit_threshold"`

	// Gates optionally overrides fields of registered gate definitions.
	Gates []GateOverride `yaml:"gates" json:"gates"`
}

// GateOverride adjusts one registered gate. Only non-zero fields apply;
// the gate itself must exist in the catalog.
type GateOverride struct {
	// Name is the catalog gate to adjust.
	Name string `yaml:"name" json:"name"`

	// Instruction replaces the advisory text surfaced when the gate blocks.
	Instruction string `yaml:"instruction" json:"instruction"`

	// ResetsOnPrompt overrides whether a new prompt closes the gate.
	ResetsOnPrompt *bool `yaml:"resets_on_prompt" json:"resets_on_prompt"`

	// AppliesTo replaces the tool categories the gate restricts.
	AppliesTo []string `yaml:"applies_to" json:"applies_to"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput         = "table"
	defaultBaseDir        = ".agents/sg"
	defaultMode           = "block"
	defaultAuditThreshold = 15
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output:         defaultOutput,
		BaseDir:        defaultBaseDir,
		Mode:           defaultMode,
		AuditThreshold: defaultAuditThreshold,
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the resolved configuration for fatal errors. An unknown
// gate or category here is a configuration error and aborts startup rather
// than degrading to a default.
func (c *Config) Validate() error {
	if gate.ParseMode(c.Mode) == "" {
		return fmt.Errorf("invalid enforcement mode %q (want warn or block)", c.Mode)
	}
	if c.AuditThreshold <= 0 {
		return fmt.Errorf("audit_threshold must be positive, got %d", c.AuditThreshold)
	}
	for _, ov := range c.Gates {
		if gate.ParseName(ov.Name) == "" {
			return fmt.Errorf("%w: %q in gate overrides", gate.ErrUnknownGate, ov.Name)
		}
		for _, cat := range ov.AppliesTo {
			if gate.ParseCategory(cat) == "" {
				return fmt.Errorf("unknown tool category %q for gate %q", cat, ov.Name)
			}
		}
	}
	return nil
}

// EnforcementMode returns the parsed enforcement mode.
func (c *Config) EnforcementMode() gate.Mode {
	return gate.ParseMode(c.Mode)
}

// BuildRegistry applies the configured gate overrides to the default
// catalog and returns the validated registry.
func (c *Config) BuildRegistry() (*gate.Registry, error) {
	overrides := make(map[gate.Name]GateOverride, len(c.Gates))
	for _, ov := range c.Gates {
		name := gate.ParseName(ov.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: %q in gate overrides", gate.ErrUnknownGate, ov.Name)
		}
		overrides[name] = ov
	}

	var defs []gate.Definition
	for _, def := range gate.DefaultRegistry().Definitions() {
		if ov, ok := overrides[def.Name]; ok {
			if ov.Instruction != "" {
				def.Instruction = ov.Instruction
			}
			if ov.ResetsOnPrompt != nil {
				def.ResetsOnPrompt = *ov.ResetsOnPrompt
			}
			if len(ov.AppliesTo) > 0 {
				def.AppliesTo = nil
				for _, cat := range ov.AppliesTo {
					parsed := gate.ParseCategory(cat)
					if parsed == "" {
						return nil, fmt.Errorf("unknown tool category %q for gate %q", cat, def.Name)
					}
					def.AppliesTo = append(def.AppliesTo, parsed)
				}
			}
		}
		defs = append(defs, def)
	}
	return gate.NewRegistry(defs)
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sessiongate", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("SESSIONGATE_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".sessiongate", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("SESSIONGATE_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("SESSIONGATE_BASE_DIR"); v != "" {
		cfg.BaseDir = v
	}
	if v := os.Getenv("SESSIONGATE_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("SESSIONGATE_AUDIT_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AuditThreshold = n
		}
	}
	if os.Getenv("SESSIONGATE_VERBOSE") == "true" || os.Getenv("SESSIONGATE_VERBOSE") == "1" {
		cfg.Verbose = true
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Output, src.Output)
	mergeStr(&dst.BaseDir, src.BaseDir)
	mergeStr(&dst.Mode, src.Mode)
	mergeInt(&dst.AuditThreshold, src.AuditThreshold)
	if src.Verbose {
		dst.Verbose = true
	}
	if len(src.Gates) > 0 {
		dst.Gates = src.Gates
	}
	return dst
}
