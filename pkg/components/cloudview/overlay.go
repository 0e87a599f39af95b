package cloudview

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/recera/nodecloud/pkg/nodecloud"
	"github.com/recera/nodecloud/pkg/vdom"
)

// Element attributes shared by the browser hosts
const (
	ContainerClass = "nc-cloud"
	CanvasClass    = "nc-edges"
	NodeAttr       = "data-node"
	KindAttr       = "data-kind"
)

// Styles is the stylesheet for the overlay elements
const Styles = `.nc-cloud{position:relative;width:100%;height:100%;overflow:hidden;background:#0f172a;user-select:none}
.nc-cloud.nc-interactive{cursor:grab}
.nc-cloud.nc-interactive:active{cursor:grabbing}
.nc-edges{position:absolute;inset:0;width:100%;height:100%;pointer-events:none}
.nc-node{position:absolute;top:0;left:0;will-change:transform;display:flex;align-items:center;justify-content:center;transition:filter .2s,opacity .2s}
.nc-badge{width:96px;height:96px;border-radius:9999px;border:2px solid rgba(6,182,212,.3);background:rgba(30,41,59,.9);color:#f1f5f9;font:700 12px/1.2 sans-serif;text-align:center;padding:8px;box-sizing:border-box}
.nc-pill{padding:4px 12px;border-radius:9999px;border:1px solid #334155;background:rgba(30,41,59,.8);color:#cbd5e1;font:500 12px sans-serif;white-space:nowrap}
.nc-dot{width:12px;height:12px;border-radius:9999px}
.nc-primary{background:#06b6d4}
.nc-secondary{background:#475569}
.nc-interactive .nc-badge:hover{border-color:#22d3ee}
.nc-interactive .nc-pill:hover{border-color:#0ea5e9;background:#0ea5e9;color:#fff}
.nc-detail{font:14px sans-serif;color:#e2e8f0}
.nc-detail img{max-width:100%;border-radius:8px}
.nc-tag{display:inline-block;margin:2px;padding:2px 8px;border-radius:9999px;background:#1e293b}`

// Overlay builds the markup for one frame: the container, the edge canvas
// and one element per node keyed by node id.
func Overlay(f *nodecloud.Frame, interactive bool) *vdom.VNode {
	class := ContainerClass
	if interactive {
		class += " nc-interactive"
	}

	kids := make([]*vdom.VNode, 0, len(f.Nodes)+1)
	kids = append(kids, vdom.NewElement("canvas", vdom.Props{
		"class":  CanvasClass,
		"width":  f.Viewport.Width,
		"height": f.Viewport.Height,
	}))
	for i := range f.Nodes {
		kids = append(kids, NodeElement(&f.Nodes[i], f.ShowLabels))
	}
	return vdom.NewElement("div", vdom.Props{"class": class, "key": "cloud"}, kids...)
}

// NodeElement builds the element for a single node
func NodeElement(n *nodecloud.NodeVisual, showLabels bool) *vdom.VNode {
	props := vdom.Props{
		"key":    n.ID,
		"class":  "nc-node " + n.Style.Class,
		"style":  NodeStyle(n),
		NodeAttr: n.ID,
		KindAttr: n.Kind.String(),
	}
	if n.Label != "" {
		props["title"] = n.Label
	}

	var content *vdom.VNode
	if showLabels {
		content = vdom.NewElement("span", nil, vdom.NewText(n.Label))
	}
	return vdom.NewElement("div", props, content)
}

// NodeStyle is the inline style that places a node element for one frame
func NodeStyle(n *nodecloud.NodeVisual) string {
	var b strings.Builder
	if n.Hidden {
		b.WriteString("display:none;")
		return b.String()
	}
	fmt.Fprintf(&b, "transform:translate3d(%spx,%spx,0) scale(%s);",
		num(n.X), num(n.Y), num(n.Zoom))
	fmt.Fprintf(&b, "margin-left:%spx;margin-top:%spx;", num(n.Style.OffsetX), num(n.Style.OffsetY))
	fmt.Fprintf(&b, "z-index:%d;opacity:%s;filter:%s", n.Order, num(n.Opacity), n.Style.Filter)
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// PlaceholderImage is the fallback image for an entity without one
func PlaceholderImage(title string) string {
	return "https://placehold.co/800x600/1e293b/0ea5e9?text=" + url.QueryEscape(title)
}

// ImageFor returns the entity image or its placeholder
func ImageFor(e nodecloud.Entity) string {
	if e.Image != "" {
		return e.Image
	}
	return PlaceholderImage(e.Title)
}

// Detail builds the panel shown after a selection. Primary nodes show the
// entity; secondary nodes list the primaries that carry the tag.
func Detail(g *nodecloud.Graph, id string, kind nodecloud.Kind) (*vdom.VNode, error) {
	n, ok := g.Node(id)
	if !ok || n.Kind != kind {
		return nil, fmt.Errorf("detail %s %q: %w", kind, id, nodecloud.ErrUnknownNode)
	}

	if kind == nodecloud.KindSecondary {
		items := make([]*vdom.VNode, 0, len(n.Related))
		for _, e := range g.PrimariesWithTag(id) {
			items = append(items, vdom.NewElement("li", nil,
				vdom.NewElement("a", vdom.Props{"href": "#", NodeAttr: e.ID, KindAttr: nodecloud.KindPrimary.String()},
					vdom.NewText(e.Title))))
		}
		return vdom.NewElement("div", vdom.Props{"class": "nc-detail", "key": id},
			vdom.NewElement("h2", nil, vdom.NewText(n.Label)),
			vdom.NewElement("ul", nil, items...),
		), nil
	}

	e, _ := g.Entity(id)
	tags := make([]*vdom.VNode, 0, len(e.Tags))
	for _, t := range e.Tags {
		tags = append(tags, vdom.NewElement("span", vdom.Props{"class": "nc-tag"}, vdom.NewText(t)))
	}
	var cats *vdom.VNode
	if len(e.Categories) > 0 {
		cats = vdom.NewElement("p", vdom.Props{"class": "nc-categories"},
			vdom.NewText(strings.Join(e.Categories, " · ")))
	}
	var desc *vdom.VNode
	if e.Description != "" {
		desc = vdom.NewElement("p", nil, vdom.NewText(e.Description))
	}
	return vdom.NewElement("div", vdom.Props{"class": "nc-detail", "key": id},
		vdom.NewElement("img", vdom.Props{"src": ImageFor(e), "alt": e.Title}),
		vdom.NewElement("h2", nil, vdom.NewText(e.Title)),
		cats,
		desc,
		vdom.NewElement("div", vdom.Props{"class": "nc-tags"}, tags...),
	), nil
}
