package config

import (
	"maps"
	"slices"

	"github.com/san-kum/branchwave/internal/constraint"
	"github.com/san-kum/branchwave/internal/member"
	"github.com/san-kum/branchwave/internal/topology"
)

// steel is a 12.7 mm square steel bar, 0.5 m long.
var steel = member.Properties{Length: 0.5, Density: 7800, YoungsModulus: 206e9, Height: 1.27e-2}

func preset(name string, members int, joints []JointConfig, boundaries ...topology.Boundary) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Members = slices.Repeat([]member.Properties{steel}, members)
	cfg.Joints = joints
	cfg.Boundaries = boundaries
	return cfg
}

var Presets = map[string]*Config{
	"cantilever": preset("cantilever", 1, nil,
		topology.Boundary{Member: 0, Kind: constraint.Fixed},
		topology.Boundary{Member: 0, Kind: constraint.Free},
	),
	"lframe": preset("lframe", 2,
		[]JointConfig{{Member1: 0, Member2: 1, Theta: 45}},
		topology.Boundary{Member: 0, Kind: constraint.Fixed},
		topology.Boundary{Member: 1, Kind: constraint.Free},
	),
	"straight": preset("straight", 2,
		[]JointConfig{{Member1: 0, Member2: 1, Theta: 0}},
		topology.Boundary{Member: 0, Kind: constraint.Fixed},
		topology.Boundary{Member: 1, Kind: constraint.Free},
	),
	"portal": preset("portal", 3,
		[]JointConfig{{Member1: 0, Member2: 1, Theta: 90}, {Member1: 1, Member2: 2, Theta: 90}},
		topology.Boundary{Member: 0, Kind: constraint.Fixed},
		topology.Boundary{Member: 2, Kind: constraint.Fixed},
	),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
