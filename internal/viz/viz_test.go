package viz

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/branchwave/internal/frame"
	"github.com/san-kum/branchwave/internal/modeshape"
	"github.com/san-kum/branchwave/internal/solver"
)

func samples() []solver.Sample {
	out := make([]solver.Sample, 10)
	for i := range out {
		f := float64(i + 1)
		out[i] = solver.Sample{Frequency: f, Det: complex(f-4.2, 0.5*(f-4.2))}
	}
	return out
}

func cantileverCurve() []modeshape.Curve {
	c := modeshape.Curve{
		Placement: frame.Placement{Dir: frame.Point{X: 1}, Length: 0.5},
	}
	for i := 0; i <= 10; i++ {
		x := 0.05 * float64(i)
		c.Positions = append(c.Positions, x)
		c.Transverse = append(c.Transverse, (x/0.5)*(x/0.5))
		c.Axial = append(c.Axial, 0)
	}
	return []modeshape.Curve{c}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	out := c.String()
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected 2 rows, got %q", out)
	}
	if c.Grid[0][0] == blank || c.Grid[1][3] == blank {
		t.Error("expected diagonal end cells set")
	}
	if c.Grid[0][3] != blank {
		t.Error("expected off-diagonal cell empty")
	}

	c.Set(-1, 3)
	c.Set(100, 100)
	c.Clear()
	for _, row := range c.Grid {
		for _, r := range row {
			if r != blank {
				t.Fatal("expected clear canvas")
			}
		}
	}
}

func TestBoundsOf(t *testing.T) {
	b := BoundsOf(0.1, []frame.Point{{X: 0, Y: 0}, {X: 1, Y: 2}})
	if b.MinX != -0.1 || b.MaxY != 2.1 {
		t.Errorf("unexpected bounds %+v", b)
	}
	empty := BoundsOf(0)
	if empty.MaxX <= empty.MinX {
		t.Errorf("expected non-empty default bounds, got %+v", empty)
	}
}

func TestDrawShape(t *testing.T) {
	c := NewCanvas(20, 8)
	out := DrawShape(c, cantileverCurve(), 0.2)
	if strings.Trim(out, string(rune(blank))+"\n") == "" {
		t.Error("expected something drawn")
	}
}

func TestSparkline(t *testing.T) {
	s := Sparkline(LogDet(samples()), 5)
	if s == "" {
		t.Error("expected sparkline")
	}
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("expected empty rule, got %q", got)
	}
}

func TestLogDetFloor(t *testing.T) {
	logs := LogDet([]solver.Sample{{Det: 0}, {Det: 100}})
	if math.IsInf(logs[0], 0) {
		t.Error("expected finite log at zero")
	}
	if logs[1] != 2 {
		t.Errorf("expected 2, got %g", logs[1])
	}
}

func TestSweepGraph(t *testing.T) {
	g := SweepGraph(samples(), 40, 6)
	if !strings.Contains(g, "1 to 10 Hz") {
		t.Errorf("expected caption in graph, got %q", g)
	}
	if SweepGraph(nil, 40, 6) != "" {
		t.Error("expected empty graph for no samples")
	}
	if ModeGraph(cantileverCurve(), 40, 6) == "" {
		t.Error("expected mode graph")
	}
}

func TestSavePNG(t *testing.T) {
	dir := t.TempDir()
	sweep := filepath.Join(dir, "plots", "sweep.png")
	if err := SaveSweepPNG(sweep, "sweep", samples(), []float64{4.2}); err != nil {
		t.Fatal(err)
	}
	mode := filepath.Join(dir, "mode.png")
	if err := SaveModePNG(mode, "mode", cantileverCurve(), 0.1); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{sweep, mode} {
		info, err := os.Stat(p)
		if err != nil || info.Size() == 0 {
			t.Errorf("expected png at %s", p)
		}
	}
	if err := SaveSweepPNG(filepath.Join(dir, "x.png"), "x", nil, nil); err == nil {
		t.Error("expected error for empty sweep")
	}
}

func TestExplorerNavigation(t *testing.T) {
	calls := 0
	e := NewExplorer("cantilever", samples(), []float64{4.2}, func(hz float64) ([]modeshape.Curve, error) {
		calls++
		return cantileverCurve(), nil
	})

	m, _ := e.Update(tea.KeyMsg{Type: tea.KeyRight})
	e = m.(Explorer)
	if e.cursor != 1 {
		t.Errorf("expected cursor 1, got %d", e.cursor)
	}

	m, cmd := e.Update(key("m"))
	e = m.(Explorer)
	if !e.showMode || cmd != nil {
		t.Error("expected mode view without a root to load")
	}
	if !strings.Contains(e.View(), "select a root") {
		t.Error("expected root prompt")
	}

	m, cmd = e.Update(key("n"))
	e = m.(Explorer)
	if e.root != 0 || e.cursor != 3 {
		t.Errorf("expected root 0 at cursor 3, got %d at %d", e.root, e.cursor)
	}
	if cmd == nil {
		t.Fatal("expected mode command")
	}
	m, _ = e.Update(cmd())
	e = m.(Explorer)
	if calls != 1 {
		t.Errorf("expected 1 mode solve, got %d", calls)
	}
	if !strings.Contains(e.View(), "mode at 4.2000 Hz") {
		t.Error("expected mode view")
	}

	m, _ = e.Update(key("-"))
	e = m.(Explorer)
	if e.scale != 0.05 {
		t.Errorf("expected scale 0.05, got %g", e.scale)
	}

	_, cmd = e.Update(key("q"))
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestExplorerModeError(t *testing.T) {
	e := NewExplorer("bad", samples(), []float64{4.2}, func(float64) ([]modeshape.Curve, error) {
		return nil, errors.New("not a natural frequency")
	})
	m, _ := e.Update(key("m"))
	m, cmd := m.(Explorer).Update(key("n"))
	m, _ = m.(Explorer).Update(cmd())
	if !strings.Contains(m.(Explorer).View(), "not a natural frequency") {
		t.Error("expected error in view")
	}
}
