// Package topology reads frames from a member file and a joint adjacency matrix.
//
// Members are a JSON or YAML object keyed by contiguous ids "0", "1", … with
// the properties of member.Properties. The adjacency matrix is a square CSV
// where cell (i, j) is the joint angle in degrees between members i and j, or
// -1 when they are not joined.
package topology

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/branchwave/internal/constraint"
	"github.com/san-kum/branchwave/internal/frame"
	"github.com/san-kum/branchwave/internal/member"
	"github.com/san-kum/branchwave/internal/physics"
	"gopkg.in/yaml.v3"
)

// NoJoint marks a pair of members without a joint. Diagonal cells are ignored.
const NoJoint = -1

var (
	ErrIDFormat  = errors.New("topology: member ids must be contiguous integers from 0")
	ErrAdjacency = errors.New("topology: malformed adjacency matrix")
	ErrFormat    = errors.New("topology: unsupported file format")
)

// Format is a member file encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, path)
}

// LoadMembers reads a member file.
func LoadMembers(path string) ([]member.Properties, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseMembers(file, format)
}

// ParseMembers decodes members and returns them in id order.
func ParseMembers(r io.Reader, format Format) ([]member.Properties, error) {
	raw := map[string]member.Properties{}
	switch format {
	case JSON:
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode members: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode members: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}

	out := make([]member.Properties, len(raw))
	for key, props := range raw {
		id, err := strconv.Atoi(key)
		if err != nil || id < 0 || id >= len(raw) || strconv.Itoa(id) != key {
			return nil, fmt.Errorf("%w: got %q with %d members", ErrIDFormat, key, len(raw))
		}
		out[id] = props
	}
	return out, nil
}

// LoadAdjacency reads a joint adjacency CSV.
func LoadAdjacency(path string) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseAdjacency(file)
}

// ParseAdjacency decodes a square matrix of joint angles.
func ParseAdjacency(r io.Reader) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdjacency, err)
	}

	n := len(records)
	out := make([][]float64, n)
	for i, rec := range records {
		if len(rec) != n {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrAdjacency, i, len(rec), n)
		}
		out[i] = make([]float64, n)
		for j, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: cell (%d,%d): %v", ErrAdjacency, i, j, err)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// Boundary is an end condition applied to a member after the joints.
type Boundary struct {
	Member int             `json:"member" yaml:"member" toml:"member"`
	Kind   constraint.Kind `json:"kind" yaml:"kind" toml:"kind"`
}

// Build creates a frame from members, the joints of adjacency scanned row by
// row and then boundaries in order. A nil provider keeps the frame default.
func Build(members []member.Properties, adjacency [][]float64, provider physics.Provider, boundaries []Boundary, opts ...frame.Option) (*frame.Frame, error) {
	if len(adjacency) != 0 && len(adjacency) != len(members) {
		return nil, fmt.Errorf("%w: %d rows for %d members", ErrAdjacency, len(adjacency), len(members))
	}
	if provider != nil {
		opts = append(opts, frame.WithProvider(provider))
	}
	f := frame.New(opts...)

	for _, props := range members {
		if _, err := f.AddMember(props); err != nil {
			return nil, err
		}
	}
	for i, row := range adjacency {
		if len(row) != len(members) {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrAdjacency, i, len(row))
		}
		for j, theta := range row {
			if i == j || theta == NoJoint {
				continue
			}
			if _, err := f.TwoMemberJoint(theta, i, j); err != nil {
				return nil, fmt.Errorf("joint (%d,%d): %w", i, j, err)
			}
		}
	}
	for _, b := range boundaries {
		var err error
		switch b.Kind {
		case constraint.Free:
			_, err = f.FreeEnd(b.Member)
		case constraint.Fixed:
			_, err = f.FixedEnd(b.Member)
		default:
			err = fmt.Errorf("%w: %s", physics.ErrUnknownKind, b.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("boundary on member %d: %w", b.Member, err)
		}
	}
	return f, nil
}
