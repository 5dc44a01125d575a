package storage

import (
	"encoding/json"
	"io"
	"math/cmplx"
	"os"

	"github.com/san-kum/branchwave/internal/solver"
)

type ExportSample struct {
	Frequency float64 `json:"frequency"`
	DetRe     float64 `json:"det_re"`
	DetIm     float64 `json:"det_im"`
	DetAbs    float64 `json:"det_abs"`
}

type ExportRoot struct {
	Frequency float64 `json:"frequency"`
	Ratio     float64 `json:"singularity_ratio"`
}

type ExportData struct {
	Frame   string         `json:"frame"`
	Members int            `json:"members"`
	Params  int            `json:"params"`
	Roots   []ExportRoot   `json:"roots"`
	Samples []ExportSample `json:"samples"`
}

// NewExport converts sweep samples to their JSON form.
func NewExport(frame string, members, params int, samples []solver.Sample, roots []ExportRoot) ExportData {
	data := ExportData{
		Frame:   frame,
		Members: members,
		Params:  params,
		Roots:   roots,
		Samples: make([]ExportSample, len(samples)),
	}
	for i, s := range samples {
		data.Samples[i] = ExportSample{
			Frequency: s.Frequency,
			DetRe:     real(s.Det),
			DetIm:     imag(s.Det),
			DetAbs:    cmplx.Abs(s.Det),
		}
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
