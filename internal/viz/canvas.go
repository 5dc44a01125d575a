package viz

import (
	"math"
	"strings"

	"github.com/san-kum/branchwave/internal/frame"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates. The canvas size in
// sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Bounds is an axis-aligned box in frame coordinates.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// BoundsOf returns the box around every point of paths, padded by pad on each side.
func BoundsOf(pad float64, paths ...[]frame.Point) Bounds {
	b := Bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, path := range paths {
		for _, p := range path {
			b.MinX, b.MaxX = math.Min(b.MinX, p.X), math.Max(b.MaxX, p.X)
			b.MinY, b.MaxY = math.Min(b.MinY, p.Y), math.Max(b.MaxY, p.Y)
		}
	}
	if math.IsInf(b.MinX, 1) {
		return Bounds{-1, -1, 1, 1}
	}
	return Bounds{b.MinX - pad, b.MinY - pad, b.MaxX + pad, b.MaxY + pad}
}

// project maps frame coordinates to sub-pixels with equal scale on both axes,
// y pointing up.
func (c *Canvas) project(b Bounds) func(frame.Point) (int, int) {
	pw, ph := float64(c.Width*2-1), float64(c.Height*4-1)
	spanX, spanY := math.Max(b.MaxX-b.MinX, 1e-12), math.Max(b.MaxY-b.MinY, 1e-12)
	scale := math.Min(pw/spanX, ph/spanY)
	offX := (pw - scale*spanX) / 2
	offY := (ph - scale*spanY) / 2
	return func(p frame.Point) (int, int) {
		x := offX + (p.X-b.MinX)*scale
		y := ph - offY - (p.Y-b.MinY)*scale
		return int(math.Round(x)), int(math.Round(y))
	}
}

// DrawPath draws the polyline through pts inside b.
func (c *Canvas) DrawPath(b Bounds, pts []frame.Point) {
	proj := c.project(b)
	for i := 1; i < len(pts); i++ {
		x0, y0 := proj(pts[i-1])
		x1, y1 := proj(pts[i])
		c.DrawLine(x0, y0, x1, y1)
	}
	if len(pts) == 1 {
		x, y := proj(pts[0])
		c.Set(x, y)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
