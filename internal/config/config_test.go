package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nicsuzor/sessiongate/internal/gate"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Output != "table" {
		t.Errorf("Default Output = %q, want %q", cfg.Output, "table")
	}
	if cfg.BaseDir != ".agents/sg" {
		t.Errorf("Default BaseDir = %q, want %q", cfg.BaseDir, ".agents/sg")
	}
	if cfg.Mode != "block" {
		t.Errorf("Default Mode = %q, want %q", cfg.Mode, "block")
	}
	if cfg.AuditThreshold != 15 {
		t.Errorf("Default AuditThreshold = %d, want 15", cfg.AuditThreshold)
	}
	if cfg.Verbose {
		t.Error("Default Verbose = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestMerge(t *testing.T) {
	dst := Default()
	src := &Config{
		Output: "json",
		Mode:   "warn",
	}

	result := merge(dst, src)

	if result.Output != "json" {
		t.Errorf("merge Output = %q, want %q", result.Output, "json")
	}
	if result.Mode != "warn" {
		t.Errorf("merge Mode = %q, want %q", result.Mode, "warn")
	}
	// Defaults should be preserved when not overridden
	if result.BaseDir != ".agents/sg" {
		t.Errorf("merge preserved BaseDir = %q, want %q", result.BaseDir, ".agents/sg")
	}
	if result.AuditThreshold != 15 {
		t.Errorf("merge preserved AuditThreshold = %d, want 15", result.AuditThreshold)
	}
}

func TestMergeGateOverrides(t *testing.T) {
	dst := Default()
	dst.Gates = []GateOverride{{Name: "task", Instruction: "home instruction"}}
	src := &Config{
		Gates: []GateOverride{{Name: "critic", Instruction: "project instruction"}},
	}

	result := merge(dst, src)

	// Gate overrides replace wholesale, they do not accumulate.
	if len(result.Gates) != 1 || result.Gates[0].Name != "critic" {
		t.Errorf("merge Gates = %+v, want only the source override", result.Gates)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
output: yaml
mode: warn
audit_threshold: 30
gates:
  - name: hydration
    resets_on_prompt: false
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "yaml" || cfg.Mode != "warn" || cfg.AuditThreshold != 30 {
		t.Errorf("loaded config = %+v", cfg)
	}
	if len(cfg.Gates) != 1 || cfg.Gates[0].Name != "hydration" {
		t.Fatalf("loaded Gates = %+v", cfg.Gates)
	}
	if cfg.Gates[0].ResetsOnPrompt == nil || *cfg.Gates[0].ResetsOnPrompt {
		t.Error("resets_on_prompt: false should load as explicit false, not unset")
	}
}

func TestLoadFromPathMissing(t *testing.T) {
	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("missing file should return an error")
	}
	if cfg != nil {
		t.Errorf("missing file returned config %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SESSIONGATE_OUTPUT", "json")
	t.Setenv("SESSIONGATE_BASE_DIR", "/tmp/sg")
	t.Setenv("SESSIONGATE_MODE", "warn")
	t.Setenv("SESSIONGATE_AUDIT_THRESHOLD", "5")
	t.Setenv("SESSIONGATE_VERBOSE", "1")

	cfg := applyEnv(Default())

	if cfg.Output != "json" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.BaseDir != "/tmp/sg" {
		t.Errorf("BaseDir = %q", cfg.BaseDir)
	}
	if cfg.Mode != "warn" {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.AuditThreshold != 5 {
		t.Errorf("AuditThreshold = %d", cfg.AuditThreshold)
	}
	if !cfg.Verbose {
		t.Error("Verbose should be set")
	}
}

func TestApplyEnvIgnoresBadThreshold(t *testing.T) {
	t.Setenv("SESSIONGATE_AUDIT_THRESHOLD", "lots")

	cfg := applyEnv(Default())
	if cfg.AuditThreshold != 15 {
		t.Errorf("AuditThreshold = %d, want default preserved", cfg.AuditThreshold)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "warn mode", mutate: func(c *Config) { c.Mode = "warn" }},
		{name: "bad mode", mutate: func(c *Config) { c.Mode = "strict" }, wantErr: true},
		{name: "zero threshold", mutate: func(c *Config) { c.AuditThreshold = 0 }, wantErr: true},
		{name: "negative threshold", mutate: func(c *Config) { c.AuditThreshold = -3 }, wantErr: true},
		{
			name:    "unknown gate override",
			mutate:  func(c *Config) { c.Gates = []GateOverride{{Name: "vibes"}} },
			wantErr: true,
		},
		{
			name:    "unknown category in override",
			mutate:  func(c *Config) { c.Gates = []GateOverride{{Name: "task", AppliesTo: []string{"destructive"}}} },
			wantErr: true,
		},
		{
			name:   "valid override",
			mutate: func(c *Config) { c.Gates = []GateOverride{{Name: "task", AppliesTo: []string{"mutating"}}} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildRegistry(t *testing.T) {
	off := false
	cfg := Default()
	cfg.Gates = []GateOverride{
		{Name: "hydration", Instruction: "custom hydration text", ResetsOnPrompt: &off},
		{Name: "task", AppliesTo: []string{"mutating", "read_only"}},
	}

	reg, err := cfg.BuildRegistry()
	if err != nil {
		t.Fatal(err)
	}

	hyd, ok := reg.Lookup(gate.Hydration)
	if !ok {
		t.Fatal("hydration missing from built registry")
	}
	if hyd.Instruction != "custom hydration text" {
		t.Errorf("Instruction = %q", hyd.Instruction)
	}
	if hyd.ResetsOnPrompt {
		t.Error("ResetsOnPrompt override to false not applied")
	}

	task, _ := reg.Lookup(gate.Task)
	if len(task.AppliesTo) != 2 || task.AppliesTo[1] != gate.CategoryReadOnly {
		t.Errorf("task AppliesTo = %v", task.AppliesTo)
	}

	// Untouched gates carry their catalog definitions.
	critic, _ := reg.Lookup(gate.Critic)
	if critic.Instruction == "" || !critic.ResetsOnPrompt {
		t.Errorf("critic definition disturbed: %+v", critic)
	}
}

func TestBuildRegistryRejectsUnknownGate(t *testing.T) {
	cfg := Default()
	cfg.Gates = []GateOverride{{Name: "vibes", Instruction: "x"}}

	if _, err := cfg.BuildRegistry(); err == nil {
		t.Error("unknown gate override should fail registry construction")
	}
}

func TestEnforcementMode(t *testing.T) {
	cfg := Default()
	if cfg.EnforcementMode() != gate.ModeBlock {
		t.Errorf("EnforcementMode = %q, want block", cfg.EnforcementMode())
	}
	cfg.Mode = "warn"
	if cfg.EnforcementMode() != gate.ModeWarn {
		t.Errorf("EnforcementMode = %q, want warn", cfg.EnforcementMode())
	}
}
