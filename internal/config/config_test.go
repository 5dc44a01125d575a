package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/branchwave/internal/constraint"
	"github.com/san-kum/branchwave/internal/frame"
	"github.com/san-kum/branchwave/internal/topology"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Sweep.Step <= 0 {
		t.Error("sweep step should be positive")
	}
	if cfg.Sweep.Stop <= cfg.Sweep.Start {
		t.Errorf("expected increasing sweep, got %g..%g", cfg.Sweep.Start, cfg.Sweep.Stop)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for config without members")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("lframe")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Joints) != 1 || cfg.Joints[0].Theta != 45 {
		t.Errorf("expected one 45 degree joint, got %+v", cfg.Joints)
	}

	cfg.Joints[0].Theta = 10
	if Presets["lframe"].Joints[0].Theta != 45 {
		t.Error("preset modified through returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
			continue
		}
		f, err := cfg.Frame()
		if err != nil {
			t.Errorf("preset %s: %v", name, err)
			continue
		}
		if f.State() != frame.Complete {
			t.Errorf("preset %s: expected complete frame, got %s", name, f.State())
		}
	}
}

// The straight preset is a 1 m cantilever split in two.
func TestStraightPresetRoot(t *testing.T) {
	f, err := GetPreset("straight").Frame()
	if err != nil {
		t.Fatal(err)
	}
	at, err := f.Singularity(2 * math.Pi * 10.5431477)
	if err != nil {
		t.Fatal(err)
	}
	off, err := f.Singularity(2 * math.Pi * 10)
	if err != nil {
		t.Fatal(err)
	}
	if at > 1e-3*off {
		t.Errorf("expected singular matrix at 10.543 Hz, got ratio %g (off root %g)", at, off)
	}
}

func TestSaveLoad(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "frame"+ext)
			cfg := GetPreset("lframe")
			cfg.Loads = []LoadConfig{{Member: 1, Constraint: 2, Force: 5, Position: 0.1}}
			cfg.Sweep.Stop = 120
			if err := Save(path, cfg); err != nil {
				t.Fatal(err)
			}

			got, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if got.Sweep.Stop != 120 {
				t.Errorf("expected sweep stop 120, got %g", got.Sweep.Stop)
			}
			if len(got.Members) != 2 || got.Members[1] != cfg.Members[1] {
				t.Errorf("members not restored: %+v", got.Members)
			}
			if len(got.Boundaries) != 2 || got.Boundaries[1].Kind != constraint.Free {
				t.Errorf("boundaries not restored: %+v", got.Boundaries)
			}
			if len(got.Loads) != 1 || got.Loads[0].Force != 5 {
				t.Errorf("loads not restored: %+v", got.Loads)
			}
			f, err := got.Frame()
			if err != nil {
				t.Fatal(err)
			}
			if !f.Forced() {
				t.Error("expected forced frame")
			}
		})
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	body := `
name = "bar"

[[members]]
length = 1.0
density = 2700.0
youngs_modulus = 69e9
height = 0.01

[[boundaries]]
member = 0
kind = "fixed"

[[boundaries]]
member = 0
kind = "free"
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Solver.Precision != DefaultPrecision {
		t.Errorf("expected default precision, got %g", cfg.Solver.Precision)
	}
	if cfg.Boundaries[0].Kind != constraint.Fixed {
		t.Errorf("expected fixed boundary, got %s", cfg.Boundaries[0].Kind)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestMemberFileRelative(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"members.json": `{"0": {"length": 0.5, "density": 7800, "youngs_modulus": 206e9, "height": 0.0127}}`,
		"frame.yaml":   "member_file: members.json\nboundaries:\n  - {member: 0, kind: fixed}\n  - {member: 0, kind: free}\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	cfg, err := Load(filepath.Join(dir, "frame.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MemberFile != filepath.Join(dir, "members.json") {
		t.Errorf("expected resolved member file, got %s", cfg.MemberFile)
	}
	f, err := cfg.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Members()) != 1 {
		t.Errorf("expected 1 member, got %d", len(f.Members()))
	}
}

func TestTopologyErrors(t *testing.T) {
	cfg := GetPreset("cantilever")
	cfg.Joints = []JointConfig{{Member1: 0, Member2: 4, Theta: 10}}
	if _, _, err := cfg.Topology(); err == nil {
		t.Error("expected error for joint on missing member")
	}

	cfg = GetPreset("lframe")
	cfg.Joints = append(cfg.Joints, cfg.Joints[0])
	if _, _, err := cfg.Topology(); err == nil {
		t.Error("expected error for duplicate joint")
	}

	cfg = GetPreset("cantilever")
	cfg.Boundaries = append(cfg.Boundaries, topology.Boundary{Member: 0, Kind: constraint.Free})
	if _, err := cfg.Frame(); err == nil {
		t.Error("expected over-constrained member")
	}
}
