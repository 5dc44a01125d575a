package viz

import (
	"fmt"
	"math/cmplx"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/branchwave/internal/frame"
	"github.com/san-kum/branchwave/internal/modeshape"
	"github.com/san-kum/branchwave/internal/solver"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	minScale      = 0.01
)

// ModeFunc returns the sampled mode shape at a natural frequency in hertz.
type ModeFunc func(hz float64) ([]modeshape.Curve, error)

type modeMsg struct {
	hz     float64
	curves []modeshape.Curve
	err    error
}

// Explorer is a Bubble Tea model for stepping through a determinant sweep.
type Explorer struct {
	title   string
	samples []solver.Sample
	logs    []float64
	roots   []float64
	mode    ModeFunc

	cursor   int
	root     int
	showMode bool
	scale    float64
	curves   []modeshape.Curve
	modeHz   float64
	modeErr  error
	loading  bool

	width, height int
}

// NewExplorer returns an explorer over samples with the given sorted roots. A
// nil mode disables the mode view.
func NewExplorer(title string, samples []solver.Sample, roots []float64, mode ModeFunc) Explorer {
	roots = append([]float64(nil), roots...)
	sort.Float64s(roots)
	return Explorer{
		title:   title,
		samples: samples,
		logs:    LogDet(samples),
		roots:   roots,
		mode:    mode,
		root:    -1,
		scale:   0.1,
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

func (e Explorer) Init() tea.Cmd { return nil }

func (e Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return e.handleKey(msg)
	case tea.WindowSizeMsg:
		e.width, e.height = msg.Width, msg.Height
	case modeMsg:
		e.loading = false
		e.modeHz, e.curves, e.modeErr = msg.hz, msg.curves, msg.err
	}
	return e, nil
}

func (e Explorer) handleKey(msg tea.KeyMsg) (Explorer, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return e, tea.Quit
	case "left", "h":
		if e.cursor > 0 {
			e.cursor--
		}
	case "right", "l":
		if e.cursor < len(e.samples)-1 {
			e.cursor++
		}
	case "n":
		if e.root < len(e.roots)-1 {
			e.root++
			e.cursor = e.nearest(e.roots[e.root])
			cmd := e.loadMode()
			return e, cmd
		}
	case "p":
		if e.root > 0 {
			e.root--
			e.cursor = e.nearest(e.roots[e.root])
			cmd := e.loadMode()
			return e, cmd
		}
	case "m":
		e.showMode = !e.showMode
		cmd := e.loadMode()
		return e, cmd
	case "+", "=":
		e.scale *= 2
	case "-":
		e.scale = max(e.scale/2, minScale)
	}
	return e, nil
}

// loadMode computes the mode at the selected root when the mode view needs it.
func (e *Explorer) loadMode() tea.Cmd {
	if !e.showMode || e.mode == nil || e.root < 0 {
		return nil
	}
	hz := e.roots[e.root]
	if hz == e.modeHz && e.curves != nil {
		return nil
	}
	e.loading = true
	mode := e.mode
	return func() tea.Msg {
		curves, err := mode(hz)
		return modeMsg{hz: hz, curves: curves, err: err}
	}
}

// nearest returns the index of the sample closest to hz.
func (e Explorer) nearest(hz float64) int {
	i := sort.Search(len(e.samples), func(i int) bool { return e.samples[i].Frequency >= hz })
	switch {
	case i == 0:
		return 0
	case i == len(e.samples):
		return len(e.samples) - 1
	case hz-e.samples[i-1].Frequency < e.samples[i].Frequency-hz:
		return i - 1
	}
	return i
}

func (e Explorer) View() string {
	var b strings.Builder
	b.WriteString(Title.Render(e.title) + "\n")
	b.WriteString(Separator(e.width-2) + "\n")

	if len(e.samples) == 0 {
		b.WriteString(Subtle.Render("no samples") + "\n")
		return b.String()
	}

	b.WriteString(Sparkline(e.logs, e.width-2) + "\n")
	if e.cursor < len(e.samples) {
		b.WriteString(e.marker() + "\n\n")
		s := e.samples[e.cursor]
		b.WriteString(MetricLabel.Render("frequency") + MetricValue.Render(fmt.Sprintf("%.4f Hz", s.Frequency)) + "\n")
		b.WriteString(MetricLabel.Render("|det A|") + MetricValue.Render(fmt.Sprintf("%.4e", cmplx.Abs(s.Det))) + "\n")
		b.WriteString(MetricLabel.Render("det A") + MetricValue.Render(fmt.Sprintf("%.4e", s.Det)) + "\n")
	}

	b.WriteString("\n" + MetricLabel.Render("roots") + e.rootList() + "\n")

	if e.showMode {
		b.WriteString("\n" + e.modeView())
	}

	b.WriteString("\n" + KeyHint.Render("h/l move  n/p roots  m mode  +/- scale  q quit") + "\n")
	return GlassPanel.Render(b.String())
}

func (e Explorer) marker() string {
	w := min(e.width-2, len(e.samples))
	if w <= 0 {
		return ""
	}
	pos := e.cursor * w / len(e.samples)
	return strings.Repeat(" ", pos) + Highlight.Render("▲")
}

func (e Explorer) rootList() string {
	if len(e.roots) == 0 {
		return Subtle.Render("none")
	}
	parts := make([]string, len(e.roots))
	for i, r := range e.roots {
		label := fmt.Sprintf("%.4f", r)
		if i == e.root {
			label = Highlight.Render(label)
		}
		parts[i] = label
	}
	return strings.Join(parts, "  ")
}

func (e Explorer) modeView() string {
	switch {
	case e.mode == nil:
		return Subtle.Render("mode view unavailable") + "\n"
	case e.root < 0:
		return Subtle.Render("select a root with n") + "\n"
	case e.loading:
		return Subtle.Render(fmt.Sprintf("solving mode at %.4f Hz", e.roots[e.root])) + "\n"
	case e.modeErr != nil:
		return ErrorText.Render(e.modeErr.Error()) + "\n"
	}
	canvas := NewCanvas(max(e.width-4, 10), max(e.height/2, 6))
	return Subtle.Render(fmt.Sprintf("mode at %.4f Hz, scale %.2f", e.modeHz, e.scale)) + "\n" + DrawShape(canvas, e.curves, e.scale)
}

// DrawShape draws the undeformed and deformed frame on canvas.
func DrawShape(canvas *Canvas, curves []modeshape.Curve, scale float64) string {
	var paths [][]frame.Point
	for _, c := range curves {
		paths = append(paths, c.Undeformed(), c.Deformed(scale))
	}
	bounds := BoundsOf(0.05, paths...)
	canvas.Clear()
	for _, p := range paths {
		canvas.DrawPath(bounds, p)
	}
	return canvas.String()
}

// RunExplorer runs e full screen until the user quits.
func RunExplorer(e Explorer) error {
	_, err := tea.NewProgram(e, tea.WithAltScreen()).Run()
	return err
}
