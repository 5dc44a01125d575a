// Package export writes mode shapes as standalone SVG drawings.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/branchwave/internal/frame"
	"github.com/san-kum/branchwave/internal/modeshape"
	"github.com/san-kum/branchwave/internal/viz"
)

const (
	undeformedStroke = "#666688"
	deformedStroke   = "#00ccff"
)

// ModeToSVG draws the frame undeformed and deformed by scale, fitted to a
// width x height image with y pointing up.
func ModeToSVG(curves []modeshape.Curve, scale float64, width, height int) string {
	if len(curves) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var paths [][]frame.Point
	for _, c := range curves {
		paths = append(paths, c.Undeformed(), c.Deformed(scale))
	}
	b := viz.BoundsOf(0, paths...)
	rangeX, rangeY := b.MaxX-b.MinX, b.MaxY-b.MinY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	span := max(rangeX, rangeY) * 1.2
	cx, cy := (b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2
	fit := float64(min(width, height)) / span

	project := func(p frame.Point) (float64, float64) {
		return float64(width)/2 + (p.X-cx)*fit, float64(height)/2 - (p.Y-cy)*fit
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, path := range paths {
		if len(path) < 2 {
			continue
		}
		stroke, extra := deformedStroke, ""
		if i%2 == 0 {
			stroke, extra = undeformedStroke, ` stroke-dasharray="4 3"`
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5"%s d="M`, stroke, extra))
		for j, p := range path {
			x, y := project(p)
			if j > 0 {
				sb.WriteString(" L")
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// WriteModeSVG writes ModeToSVG to path.
func WriteModeSVG(path string, curves []modeshape.Curve, scale float64, width, height int) error {
	svg := ModeToSVG(curves, scale, width, height)
	if svg == "" {
		return fmt.Errorf("export: nothing to draw")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
