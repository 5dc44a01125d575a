package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/branchwave/internal/modeshape"
	"github.com/san-kum/branchwave/internal/solver"
)

const (
	KindSweep = "sweep"
	KindMode  = "mode"

	metadataFile = "metadata.json"
	sweepFile    = "sweep.csv"
	modeFile     = "mode.csv"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Frame     string             `json:"frame"`
	Timestamp time.Time          `json:"timestamp"`
	Start     float64            `json:"start,omitempty"`
	Stop      float64            `json:"stop,omitempty"`
	Step      float64            `json:"step,omitempty"`
	Frequency float64            `json:"frequency,omitempty"`
	Roots     []float64          `json:"roots,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// ModePoint is one row of a stored mode shape.
type ModePoint struct {
	Member     int
	Position   float64
	Transverse float64
	Axial      float64
	X, Y       float64
}

func (s *Store) create(kind, name string, meta *RunMetadata) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%s_%d", name, kind, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Kind = kind
	meta.Frame = name
	meta.Timestamp = ts

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return runDir, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SaveSweep stores det samples and the roots found from them.
func (s *Store) SaveSweep(name string, samples []solver.Sample, roots []float64, metrics map[string]float64) (string, error) {
	meta := RunMetadata{Roots: roots, Metrics: metrics}
	if n := len(samples); n > 0 {
		meta.Start = samples[0].Frequency
		meta.Stop = samples[n-1].Frequency
		if n > 1 {
			meta.Step = samples[1].Frequency - samples[0].Frequency
		}
	}
	runDir, err := s.create(KindSweep, name, &meta)
	if err != nil {
		return "", err
	}

	rows := make([][]string, len(samples))
	for i, sm := range samples {
		rows[i] = []string{format(sm.Frequency), format(real(sm.Det)), format(imag(sm.Det))}
	}
	if err := writeCSV(filepath.Join(runDir, sweepFile), []string{"frequency", "det_re", "det_im"}, rows); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveMode stores a sampled mode shape with the deformed centre line at unit scale.
func (s *Store) SaveMode(name string, frequency float64, curves []modeshape.Curve) (string, error) {
	meta := RunMetadata{Frequency: frequency}
	runDir, err := s.create(KindMode, name, &meta)
	if err != nil {
		return "", err
	}

	var rows [][]string
	for _, c := range curves {
		pts := c.Deformed(1)
		for i, x := range c.Positions {
			rows = append(rows, []string{
				strconv.Itoa(c.Member), format(x),
				format(c.Transverse[i]), format(c.Axial[i]),
				format(pts[i].X), format(pts[i].Y),
			})
		}
	}
	header := []string{"member", "x", "transverse", "axial", "px", "py"}
	if err := writeCSV(filepath.Join(runDir, modeFile), header, rows); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns the stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func readCSV(path string, columns int) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = columns
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	out := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, columns)
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), i+2, err)
			}
			row[j] = v
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Store) LoadSweep(runID string) ([]solver.Sample, error) {
	rows, err := readCSV(filepath.Join(s.baseDir, runID, sweepFile), 3)
	if err != nil {
		return nil, err
	}
	samples := make([]solver.Sample, len(rows))
	for i, r := range rows {
		samples[i] = solver.Sample{Frequency: r[0], Det: complex(r[1], r[2])}
	}
	return samples, nil
}

func (s *Store) LoadMode(runID string) ([]ModePoint, error) {
	rows, err := readCSV(filepath.Join(s.baseDir, runID, modeFile), 6)
	if err != nil {
		return nil, err
	}
	points := make([]ModePoint, len(rows))
	for i, r := range rows {
		points[i] = ModePoint{Member: int(r[0]), Position: r[1], Transverse: r[2], Axial: r[3], X: r[4], Y: r[5]}
	}
	return points, nil
}
