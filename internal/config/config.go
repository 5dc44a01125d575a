package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/san-kum/branchwave/internal/frame"
	"github.com/san-kum/branchwave/internal/member"
	"github.com/san-kum/branchwave/internal/topology"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSweepStart    = 1.0
	DefaultSweepStop     = 300.0
	DefaultSweepStep     = 1.0
	DefaultNewtonTol     = 1e-10
	DefaultNewtonMaxIter = 100
	DefaultPrecision     = 1e-9
	DefaultBisectMaxIter = 200
	DefaultAtol          = 1e-6
	DefaultRtol          = 1e-6
	DefaultCertify       = 1e-6
	DefaultModeStep      = 0.01
	DefaultOutputDir     = ".branchwave"
	DefaultLogLevel      = "info"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Name          string              `yaml:"name" toml:"name"`
	MemberFile    string              `yaml:"member_file,omitempty" toml:"member_file,omitempty"`
	AdjacencyFile string              `yaml:"adjacency_file,omitempty" toml:"adjacency_file,omitempty"`
	Members       []member.Properties `yaml:"members,omitempty" toml:"members,omitempty"`
	Joints        []JointConfig       `yaml:"joints,omitempty" toml:"joints,omitempty"`
	Boundaries    []topology.Boundary `yaml:"boundaries" toml:"boundaries"`
	Loads         []LoadConfig        `yaml:"loads,omitempty" toml:"loads,omitempty"`
	Sweep         SweepConfig         `yaml:"sweep" toml:"sweep"`
	Solver        SolverConfig        `yaml:"solver" toml:"solver"`
	ModeStep      float64             `yaml:"mode_step" toml:"mode_step"`
	OutputDir     string              `yaml:"output_dir" toml:"output_dir"`
	LogLevel      string              `yaml:"log_level" toml:"log_level"`
}

// JointConfig is a rigid joint between two members, Theta in degrees.
type JointConfig struct {
	Member1 int     `yaml:"member1" toml:"member1"`
	Member2 int     `yaml:"member2" toml:"member2"`
	Theta   float64 `yaml:"theta" toml:"theta"`
}

// LoadConfig is a point force at Position metres from the end owned by Constraint.
type LoadConfig struct {
	Member     int     `yaml:"member" toml:"member"`
	Constraint int     `yaml:"constraint" toml:"constraint"`
	Force      float64 `yaml:"force" toml:"force"`
	Position   float64 `yaml:"position" toml:"position"`
}

// SweepConfig is a frequency range in hertz.
type SweepConfig struct {
	Start float64 `yaml:"start" toml:"start"`
	Stop  float64 `yaml:"stop" toml:"stop"`
	Step  float64 `yaml:"step" toml:"step"`
}

type SolverConfig struct {
	NewtonTol        float64 `yaml:"newton_tol" toml:"newton_tol"`
	NewtonMaxIter    int     `yaml:"newton_max_iter" toml:"newton_max_iter"`
	Precision        float64 `yaml:"precision" toml:"precision"`
	BisectMaxIter    int     `yaml:"bisect_max_iter" toml:"bisect_max_iter"`
	CertifyTolerance float64 `yaml:"certify_tolerance" toml:"certify_tolerance"`
	Atol             float64 `yaml:"atol" toml:"atol"`
	Rtol             float64 `yaml:"rtol" toml:"rtol"`
}

func DefaultConfig() *Config {
	return &Config{
		Sweep: SweepConfig{
			Start: DefaultSweepStart,
			Stop:  DefaultSweepStop,
			Step:  DefaultSweepStep,
		},
		Solver: SolverConfig{
			NewtonTol:        DefaultNewtonTol,
			NewtonMaxIter:    DefaultNewtonMaxIter,
			Precision:        DefaultPrecision,
			BisectMaxIter:    DefaultBisectMaxIter,
			CertifyTolerance: DefaultCertify,
			Atol:             DefaultAtol,
			Rtol:             DefaultRtol,
		},
		ModeStep:  DefaultModeStep,
		OutputDir: DefaultOutputDir,
		LogLevel:  DefaultLogLevel,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or TOML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// resolve makes topology file paths relative to the config file.
func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.MemberFile, &c.AdjacencyFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
			return err
		}
		data = []byte(sb.String())
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the ranges the solvers rely on. Member properties are
// checked when the frame is built.
func (c *Config) Validate() error {
	if c.MemberFile == "" && len(c.Members) == 0 {
		return fmt.Errorf("%w: no members", ErrInvalid)
	}
	if c.MemberFile != "" && len(c.Members) != 0 {
		return fmt.Errorf("%w: both member_file and members set", ErrInvalid)
	}
	if !(c.Sweep.Step > 0) || !(c.Sweep.Start > 0) || c.Sweep.Stop <= c.Sweep.Start {
		return fmt.Errorf("%w: sweep %g..%g step %g", ErrInvalid, c.Sweep.Start, c.Sweep.Stop, c.Sweep.Step)
	}
	s := c.Solver
	if !(s.NewtonTol > 0) || !(s.Precision > 0) || s.NewtonMaxIter < 1 || s.BisectMaxIter < 1 {
		return fmt.Errorf("%w: solver tolerances", ErrInvalid)
	}
	if s.Atol < 0 || s.Rtol < 0 || !(s.CertifyTolerance > 0) {
		return fmt.Errorf("%w: certificate tolerances", ErrInvalid)
	}
	if !(c.ModeStep > 0) {
		return fmt.Errorf("%w: mode_step %g", ErrInvalid, c.ModeStep)
	}
	return nil
}

// Topology returns the member properties and joint adjacency matrix, read from
// files when member_file is set.
func (c *Config) Topology() ([]member.Properties, [][]float64, error) {
	if c.MemberFile != "" {
		props, err := topology.LoadMembers(c.MemberFile)
		if err != nil {
			return nil, nil, err
		}
		if c.AdjacencyFile == "" {
			return props, nil, nil
		}
		adj, err := topology.LoadAdjacency(c.AdjacencyFile)
		if err != nil {
			return nil, nil, err
		}
		return props, adj, nil
	}

	n := len(c.Members)
	adj := make([][]float64, n)
	for i := range adj {
		adj[i] = slices.Repeat([]float64{topology.NoJoint}, n)
	}
	for _, j := range c.Joints {
		if j.Member1 < 0 || j.Member1 >= n || j.Member2 < 0 || j.Member2 >= n {
			return nil, nil, fmt.Errorf("%w: joint between members %d and %d", ErrInvalid, j.Member1, j.Member2)
		}
		if adj[j.Member1][j.Member2] != topology.NoJoint {
			return nil, nil, fmt.Errorf("%w: duplicate joint between members %d and %d", ErrInvalid, j.Member1, j.Member2)
		}
		adj[j.Member1][j.Member2] = j.Theta
	}
	return slices.Clone(c.Members), adj, nil
}

// Frame builds the configured frame and applies its point loads.
func (c *Config) Frame(opts ...frame.Option) (*frame.Frame, error) {
	props, adj, err := c.Topology()
	if err != nil {
		return nil, err
	}
	f, err := topology.Build(props, adj, nil, c.Boundaries, opts...)
	if err != nil {
		return nil, err
	}
	for _, l := range c.Loads {
		if err := f.AddPointLoad(l.Member, l.Constraint, l.Force, l.Position); err != nil {
			return nil, fmt.Errorf("load on member %d: %w", l.Member, err)
		}
	}
	return f, nil
}

// Clone returns a copy that shares no slices with c.
func (c *Config) Clone() *Config {
	out := *c
	out.Members = slices.Clone(c.Members)
	out.Joints = slices.Clone(c.Joints)
	out.Boundaries = slices.Clone(c.Boundaries)
	out.Loads = slices.Clone(c.Loads)
	return &out
}
