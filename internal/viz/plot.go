package viz

import (
	"bufio"
	"fmt"
	"image/color"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/branchwave/internal/modeshape"
	"github.com/san-kum/branchwave/internal/solver"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// floor keeps log10 finite at exact zeros of det.
const floor = 1e-300

// LogDet returns log10|det| for each sample.
func LogDet(samples []solver.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = math.Log10(math.Max(cmplx.Abs(s.Det), floor))
	}
	return out
}

// SweepGraph draws log10|det| over the sweep in the terminal.
func SweepGraph(samples []solver.Sample, width, height int) string {
	if len(samples) == 0 {
		return ""
	}
	caption := fmt.Sprintf("log10|det A|, %g to %g Hz", samples[0].Frequency, samples[len(samples)-1].Frequency)
	return asciigraph.Plot(LogDet(samples),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// ModeGraph draws the transverse displacement of each member side by side.
func ModeGraph(curves []modeshape.Curve, width, height int) string {
	var data []float64
	for _, c := range curves {
		data = append(data, c.Transverse...)
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("transverse displacement, members in order"),
	)
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Label.Padding = vg.Points(6)
	p.Y.Label.Padding = vg.Points(6)
	p.X.LineStyle.Width = vg.Points(1.5)
	p.Y.LineStyle.Width = vg.Points(1.5)
}

func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory: %w", err)
		}
	}
	w := vg.Length(widthIn) * vg.Inch
	h := vg.Length(heightIn) * vg.Inch

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(150),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// SweepPlot builds a plot of log10|det| with the roots marked.
func SweepPlot(title string, samples []solver.Sample, roots []float64) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("plot data invalid")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "frequency (Hz)"
	p.Y.Label.Text = "log10 |det A|"
	stylePlot(p)

	logs := LogDet(samples)
	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i].X = s.Frequency
		pts[i].Y = logs[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)

	if len(roots) > 0 {
		lo, hi := minMax(logs)
		for _, r := range roots {
			marker, err := plotter.NewLine(plotter.XYs{{X: r, Y: lo}, {X: r, Y: hi}})
			if err != nil {
				return nil, err
			}
			marker.LineStyle.Color = color.RGBA{R: 200, A: 255}
			marker.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
			p.Add(marker)
		}
	}
	return p, nil
}

// ModePlot builds a plot of the frame drawn undeformed and deformed by scale.
func ModePlot(title string, curves []modeshape.Curve, scale float64) (*plot.Plot, error) {
	if len(curves) == 0 {
		return nil, fmt.Errorf("plot data invalid")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	stylePlot(p)

	for _, c := range curves {
		for _, layer := range []struct {
			scale float64
			col   color.Color
			width vg.Length
		}{
			{0, color.Gray{Y: 160}, vg.Points(1)},
			{scale, color.RGBA{B: 200, A: 255}, vg.Points(2)},
		} {
			path := c.Deformed(layer.scale)
			pts := make(plotter.XYs, len(path))
			for i, q := range path {
				pts[i].X, pts[i].Y = q.X, q.Y
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return nil, err
			}
			line.LineStyle.Color = layer.col
			line.LineStyle.Width = layer.width
			p.Add(line)
		}
	}
	return p, nil
}

// SaveSweepPNG writes SweepPlot to filename.
func SaveSweepPNG(filename, title string, samples []solver.Sample, roots []float64) error {
	p, err := SweepPlot(title, samples, roots)
	if err != nil {
		return err
	}
	return savePlotPNG(p, 8, 5, filename)
}

// SaveModePNG writes ModePlot to filename.
func SaveModePNG(filename, title string, curves []modeshape.Curve, scale float64) error {
	p, err := ModePlot(title, curves, scale)
	if err != nil {
		return err
	}
	return savePlotPNG(p, 6, 6, filename)
}

func minMax(v []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return lo, hi
}
