package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	GlassPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	// Selected root or cursor sample
	Highlight = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff88ff"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(14)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
)

// Sparkline renders values as a single row of block characters, resampled to
// width. Low values, the neighbourhoods of roots when fed log|det|, are green.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := minMax(values)
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	n := min(width, len(values))
	var result strings.Builder
	for i := 0; i < n; i++ {
		v := values[i*len(values)/n]
		norm := (v - lo) / rng
		idx := min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)
		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}
	return result.String()
}

// Separator draws a decorated horizontal rule.
func Separator(width int) string {
	if width < 8 {
		return Subtle.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return Subtle.Render(left + " ◆ " + right)
}
