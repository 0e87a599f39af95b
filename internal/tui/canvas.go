package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/nodecloud/pkg/nodecloud"
)

// Pixel size one terminal cell stands for when projecting into a grid
const (
	CellWidth  = 8
	CellHeight = 16
)

// maxLabel is the longest label drawn on the grid, in runes
const maxLabel = 20

type ink uint8

const (
	inkBlank ink = iota
	inkLink
	inkLinkHot
	inkPrimary
	inkSecondary
	inkHighlight
	inkDim
)

var palette = map[ink]lipgloss.Style{
	inkBlank:     lipgloss.NewStyle(),
	inkLink:      lipgloss.NewStyle().Foreground(lipgloss.Color("#475569")),
	inkLinkHot:   lipgloss.NewStyle().Foreground(lipgloss.Color(nodecloud.AccentColor)),
	inkPrimary:   lipgloss.NewStyle().Foreground(lipgloss.Color(nodecloud.LabelColor)).Bold(true),
	inkSecondary: lipgloss.NewStyle().Foreground(lipgloss.Color(nodecloud.PillTextColor)),
	inkHighlight: lipgloss.NewStyle().Foreground(lipgloss.Color(nodecloud.AccentColor)).Bold(true),
	inkDim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#334155")).Faint(true),
}

type cell struct {
	r   rune
	ink ink
}

// Canvas is a character grid a frame is drawn onto
type Canvas struct {
	cols, rows int
	cells      []cell
}

// NewCanvas creates a blank grid
func NewCanvas(cols, rows int) *Canvas {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c := &Canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

// ViewportFor is the pixel viewport a grid of cols by rows stands for
func ViewportFor(cols, rows int) nodecloud.Viewport {
	return nodecloud.Viewport{Width: float64(cols * CellWidth), Height: float64(rows * CellHeight)}
}

// CellAt maps a pixel position to its grid cell
func CellAt(x, y float64) (col, row int) {
	return int(x / CellWidth), int(y / CellHeight)
}

// PixelAt maps a grid cell to the pixel position of its center
func PixelAt(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * CellWidth, (float64(row) + 0.5) * CellHeight
}

func (c *Canvas) set(x, y int, r rune, k ink) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.cells[y*c.cols+x] = cell{r: r, ink: k}
}

// line draws with Bresenham's algorithm
func (c *Canvas) line(x0, y0, x1, y1 int, r rune, k ink) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0, r, k)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// text writes s centered on column x
func (c *Canvas) text(x, y int, s string, k ink) {
	runes := []rune(s)
	x -= len(runes) / 2
	for i, r := range runes {
		c.set(x+i, y, r, k)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Draw paints a frame: links first, then nodes back to front
func (c *Canvas) Draw(f *nodecloud.Frame) {
	for _, l := range f.Links {
		if l.Stroke.Alpha < 0.1 {
			continue
		}
		k, r := inkLink, '·'
		if l.Connected {
			k, r = inkLinkHot, '•'
		}
		x0, y0 := CellAt(l.X1, l.Y1)
		x1, y1 := CellAt(l.X2, l.Y2)
		c.line(x0, y0, x1, y1, r, k)
	}

	for _, i := range f.PaintOrder() {
		n := &f.Nodes[i]
		if n.Hidden {
			continue
		}
		k := inkPrimary
		if n.Kind == nodecloud.KindSecondary {
			k = inkSecondary
		}
		switch n.Style.Emphasis {
		case nodecloud.EmphasisHighlighted:
			k = inkHighlight
		case nodecloud.EmphasisDimmed:
			k = inkDim
		}

		x, y := CellAt(n.X, n.Y)
		if !f.ShowLabels {
			r := '●'
			if n.Kind == nodecloud.KindSecondary {
				r = '•'
			}
			c.set(x, y, r, k)
			continue
		}
		c.text(x, y, nodeLabel(n), k)
	}
}

func nodeLabel(n *nodecloud.NodeVisual) string {
	label := []rune(n.Label)
	if len(label) > maxLabel {
		label = append(label[:maxLabel-1], '…')
	}
	if n.Kind == nodecloud.KindSecondary {
		return "(" + string(label) + ")"
	}
	return "[" + string(label) + "]"
}

// Plain returns the grid without styling, one line per row
func (c *Canvas) Plain() string {
	var b strings.Builder
	for y := 0; y < c.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, cl := range c.cells[y*c.cols : (y+1)*c.cols] {
			b.WriteRune(cl.r)
		}
	}
	return b.String()
}

// Render returns the grid with runs of equal ink styled together
func (c *Canvas) Render() string {
	var b strings.Builder
	var run strings.Builder
	for y := 0; y < c.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		row := c.cells[y*c.cols : (y+1)*c.cols]
		for i := 0; i < len(row); {
			k := row[i].ink
			run.Reset()
			for ; i < len(row) && row[i].ink == k; i++ {
				run.WriteRune(row[i].r)
			}
			if k == inkBlank {
				b.WriteString(run.String())
				continue
			}
			b.WriteString(palette[k].Render(run.String()))
		}
	}
	return b.String()
}
