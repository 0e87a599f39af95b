package nodecloud

import "sort"

// ProjectedNode is a node's screen placement for one frame
type ProjectedNode struct {
	ID     string
	Kind   Kind
	Label  string
	Image  string
	X      float64
	Y      float64
	Depth  float64 // rotated z, larger is nearer
	Scale  float64
	ZIndex int
}

// NodeVisual is a projected node with its resolved presentation
type NodeVisual struct {
	ProjectedNode
	Style   Style
	Zoom    float64 // Scale times the style boost
	Opacity float64
	Order   int // resolved paint order
	Hidden  bool
}

// LinkVisual is one link's stroke for a frame
type LinkVisual struct {
	Source    string
	Target    string
	X1, Y1    float64
	X2, Y2    float64
	Connected bool
	Stroke    LinkStroke
}

// Frame is everything a host needs to paint one tick
type Frame struct {
	Seq        uint64
	Viewport   Viewport
	Rotation   Rotation
	HoverID    string
	ShowLabels bool
	Links      []LinkVisual
	Nodes      []NodeVisual
}

// HoverActive reports whether the frame was drawn in hover focus
func (f *Frame) HoverActive() bool {
	return f.HoverID != ""
}

// Node finds a node visual by id
func (f *Frame) Node(id string) (*NodeVisual, bool) {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i], true
		}
	}
	return nil, false
}

// PaintOrder returns node indices sorted back to front
func (f *Frame) PaintOrder() []int {
	order := make([]int, len(f.Nodes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return f.Nodes[order[a]].Order < f.Nodes[order[b]].Order
	})
	return order
}

// Bounds is the screen rectangle a node element covers
func (n *NodeVisual) Bounds() (x0, y0, x1, y1 float64) {
	w, h := n.Style.Width, n.Style.Height
	if w == 0 {
		w = estimateLabelWidth(n.Label)
	}
	if h == 0 {
		h = 20
	}
	// element origin sits at the projected point plus the style offset and is
	// scaled about its own center
	cx := n.X + n.Style.OffsetX + w/2
	cy := n.Y + n.Style.OffsetY + h/2
	hw, hh := w*n.Zoom/2, h*n.Zoom/2
	return cx - hw, cy - hh, cx + hw, cy + hh
}

// Pick returns the front-most visible node whose element covers (x, y)
func (f *Frame) Pick(x, y float64) (string, bool) {
	best := -1
	for i := range f.Nodes {
		n := &f.Nodes[i]
		if n.Hidden {
			continue
		}
		x0, y0, x1, y1 := n.Bounds()
		if x < x0 || x > x1 || y < y0 || y > y1 {
			continue
		}
		if best < 0 || n.Order > f.Nodes[best].Order {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return f.Nodes[best].ID, true
}

// estimateLabelWidth approximates a pill at 12px text with horizontal padding
func estimateLabelWidth(label string) float64 {
	return float64(len([]rune(label)))*7 + 24
}
