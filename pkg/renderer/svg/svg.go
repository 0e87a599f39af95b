// Package svg renders a single cloud frame as a standalone SVG document.
package svg

import (
	"fmt"
	"io"
	"strconv"

	"github.com/recera/nodecloud/pkg/nodecloud"
	"github.com/recera/nodecloud/pkg/renderer/html"
	"github.com/recera/nodecloud/pkg/vdom"
)

// Background is the default canvas fill
const Background = "#0f172a"

// Options controls the snapshot
type Options struct {
	Background string // "" for transparent
	FontFamily string
}

// Render writes f to w as an SVG document
func Render(w io.Writer, f *nodecloud.Frame, opts Options) error {
	if !f.Viewport.Valid() {
		return fmt.Errorf("svg: viewport %vx%v has no area", f.Viewport.Width, f.Viewport.Height)
	}
	if opts.FontFamily == "" {
		opts.FontFamily = "sans-serif"
	}
	if _, err := io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"); err != nil {
		return err
	}
	return html.NewRenderer(w).Render(Tree(f, opts))
}

// Tree builds the SVG element tree for f
func Tree(f *nodecloud.Frame, opts Options) *vdom.VNode {
	width, height := f.Viewport.Width, f.Viewport.Height
	kids := make([]*vdom.VNode, 0, len(f.Links)+len(f.Nodes)+1)
	if opts.Background != "" {
		kids = append(kids, vdom.NewElement("rect", vdom.Props{
			"width": width, "height": height, "fill": opts.Background,
		}))
	}

	links := make([]*vdom.VNode, 0, len(f.Links))
	for _, l := range f.Links {
		links = append(links, vdom.NewElement("line", vdom.Props{
			"x1": fix(l.X1), "y1": fix(l.Y1), "x2": fix(l.X2), "y2": fix(l.Y2),
			"stroke":         l.Stroke.Color,
			"stroke-width":   l.Stroke.Width,
			"stroke-opacity": fix(l.Stroke.Alpha),
		}))
	}
	kids = append(kids, vdom.NewElement("g", vdom.Props{"class": "links"}, links...))

	nodes := make([]*vdom.VNode, 0, len(f.Nodes))
	for _, i := range f.PaintOrder() {
		n := &f.Nodes[i]
		if n.Hidden {
			continue
		}
		nodes = append(nodes, node(n, f.ShowLabels, opts.FontFamily))
	}
	kids = append(kids, vdom.NewElement("g", vdom.Props{"class": "nodes"}, nodes...))

	return vdom.NewElement("svg", vdom.Props{
		"xmlns":   "http://www.w3.org/2000/svg",
		"width":   width,
		"height":  height,
		"viewBox": "0 0 " + fix(width) + " " + fix(height),
	}, kids...)
}

func node(n *nodecloud.NodeVisual, showLabels bool, font string) *vdom.VNode {
	x0, y0, x1, y1 := n.Bounds()
	cx, cy := (x0+x1)/2, (y0+y1)/2
	props := vdom.Props{
		"class":     n.Style.Class,
		"opacity":   fix(n.Opacity),
		"data-node": n.ID,
	}
	if n.Style.Filter != "none" {
		props["style"] = "filter:" + n.Style.Filter
	}

	var shape, label *vdom.VNode
	switch n.Style.Shape {
	case nodecloud.ShapeBadge, nodecloud.ShapeDot:
		shape = vdom.NewElement("circle", vdom.Props{
			"cx": fix(cx), "cy": fix(cy), "r": fix((x1 - x0) / 2),
			"fill": n.Style.Fill,
		})
	case nodecloud.ShapePill:
		h := y1 - y0
		shape = vdom.NewElement("rect", vdom.Props{
			"x": fix(x0), "y": fix(y0), "width": fix(x1 - x0), "height": fix(h),
			"rx": fix(h / 2), "fill": n.Style.Fill,
		})
	}
	if showLabels && n.Label != "" {
		label = vdom.NewElement("text", vdom.Props{
			"x": fix(cx), "y": fix(cy),
			"fill":              n.Style.TextColor,
			"font-family":       font,
			"font-size":         fix(12 * n.Zoom),
			"text-anchor":       "middle",
			"dominant-baseline": "central",
		}, vdom.NewText(n.Label))
	}
	return vdom.NewElement("g", props, shape, label)
}

func fix(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
