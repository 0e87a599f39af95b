package html

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/recera/nodecloud/pkg/vdom"
)

// voidElements cannot have children
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// Renderer writes a vdom tree as HTML. Attributes are emitted in sorted
// order so output is stable between runs.
type Renderer struct {
	w   io.Writer
	err error
}

// NewRenderer creates a renderer writing to w
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Render writes node and its descendants
func (r *Renderer) Render(node *vdom.VNode) error {
	if node == nil {
		return nil
	}
	r.renderNode(node, false)
	return r.err
}

func (r *Renderer) write(s string) {
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, s)
}

func (r *Renderer) renderNode(node *vdom.VNode, raw bool) {
	if node == nil || r.err != nil {
		return
	}

	switch node.Kind {
	case vdom.KindText:
		if raw {
			r.write(node.Text)
		} else {
			r.write(html.EscapeString(node.Text))
		}
	case vdom.KindElement:
		r.renderElement(node)
	case vdom.KindFragment:
		for i := range node.Kids {
			r.renderNode(&node.Kids[i], raw)
		}
	}
}

func (r *Renderer) renderElement(node *vdom.VNode) {
	r.write("<")
	r.write(node.Tag)

	for _, key := range node.AttrKeys() {
		if key == "key" {
			continue
		}
		r.renderAttr(key, node.Props[key])
	}
	r.write(">")

	if voidElements[node.Tag] {
		return
	}

	// script and style bodies are not escaped
	raw := node.Tag == "script" || node.Tag == "style"
	for i := range node.Kids {
		r.renderNode(&node.Kids[i], raw)
	}

	r.write("</")
	r.write(node.Tag)
	r.write(">")
}

func (r *Renderer) renderAttr(key string, value any) {
	var s string
	switch v := value.(type) {
	case nil:
		return
	case bool:
		if v {
			r.write(" ")
			r.write(key)
		}
		return
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		s = v
	default:
		s = fmt.Sprintf("%v", v)
	}

	// no javascript: URLs from dataset content
	if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "javascript:") {
		s = "#"
	}

	r.write(" ")
	r.write(key)
	r.write(`="`)
	r.write(html.EscapeString(s))
	r.write(`"`)
}

// RenderToString renders node to a string
func RenderToString(node *vdom.VNode) (string, error) {
	var buf strings.Builder
	if err := NewRenderer(&buf).Render(node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Page describes a standalone HTML document
type Page struct {
	Title   string
	Styles  string
	Body    *vdom.VNode
	Scripts []string
}

// WriteDocument writes p as a complete HTML document
func WriteDocument(w io.Writer, p Page) error {
	head := []*vdom.VNode{
		vdom.NewElement("meta", vdom.Props{"charset": "utf-8"}),
		vdom.NewElement("meta", vdom.Props{"name": "viewport", "content": "width=device-width, initial-scale=1"}),
		vdom.NewElement("title", nil, vdom.NewText(p.Title)),
	}
	if p.Styles != "" {
		head = append(head, vdom.NewElement("style", nil, vdom.NewText(p.Styles)))
	}
	body := []*vdom.VNode{p.Body}
	for _, src := range p.Scripts {
		body = append(body, vdom.NewElement("script", vdom.Props{"src": src, "defer": true}))
	}

	doc := vdom.NewElement("html", vdom.Props{"lang": "en"},
		vdom.NewElement("head", nil, head...),
		vdom.NewElement("body", nil, body...),
	)
	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	return NewRenderer(w).Render(doc)
}
