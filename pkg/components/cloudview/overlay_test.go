//go:build !js || !wasm

package cloudview

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/nodecloud/pkg/nodecloud"
	"github.com/recera/nodecloud/pkg/renderer/html"
	"github.com/recera/nodecloud/pkg/vdom"
)

func entities() []nodecloud.Entity {
	return []nodecloud.Entity{
		{ID: "p1", Title: "IoT Espresso Machine", Description: "Brews over MQTT", Categories: []string{"Hardware"}, Tags: []string{"IoT", "Python"}},
		{ID: "p2", Title: "Radio Telescope", Image: "/img/eclipse.jpg", Tags: []string{"Python"}},
	}
}

var vp = nodecloud.Viewport{Width: 800, Height: 600}

func TestViewer_OneElementPerNode(t *testing.T) {
	tree := Viewer(entities(), nodecloud.DefaultOptions(), vp)
	require.NotNil(t, tree)

	var nodes []string
	tree.Walk(func(n *vdom.VNode) bool {
		if v, ok := n.Attr(NodeAttr); ok {
			nodes = append(nodes, v.(string))
		}
		return true
	})
	assert.ElementsMatch(t, []string{"p1", "p2", "tag-IoT", "tag-Python"}, nodes)

	out, err := html.RenderToString(tree)
	require.NoError(t, err)
	assert.Contains(t, out, `class="nc-cloud nc-interactive"`)
	assert.Contains(t, out, `<canvas class="nc-edges" height="600" width="800"></canvas>`)
	assert.Contains(t, out, "<span>IoT Espresso Machine</span>")
}

func TestViewer_DecorativeDots(t *testing.T) {
	o := nodecloud.DefaultOptions()
	o.Interactive = false
	o.ShowLabels = false
	out, err := html.RenderToString(Viewer(entities(), o, vp))
	require.NoError(t, err)

	assert.NotContains(t, out, "nc-interactive")
	assert.NotContains(t, out, "<span>")
	assert.Contains(t, out, "nc-dot nc-primary")
	assert.Contains(t, out, "nc-dot nc-secondary")
}

func TestViewer_ZeroViewport(t *testing.T) {
	tree := Viewer(entities(), nodecloud.DefaultOptions(), nodecloud.Viewport{})
	require.Len(t, tree.Kids, 1, "only the canvas")
}

func TestNodeStyle(t *testing.T) {
	n := &nodecloud.NodeVisual{
		ProjectedNode: nodecloud.ProjectedNode{X: 400, Y: 300.5},
		Style:         nodecloud.StyleFor(nodecloud.KindPrimary, false, false, true),
		Zoom:          1,
		Opacity:       0.8,
		Order:         100,
	}
	assert.Equal(t,
		"transform:translate3d(400.00px,300.50px,0) scale(1.00);margin-left:-48.00px;margin-top:-48.00px;z-index:100;opacity:0.80;filter:none",
		NodeStyle(n))

	n.Hidden = true
	assert.Equal(t, "display:none;", NodeStyle(n))
}

func TestDetail_Primary(t *testing.T) {
	g := nodecloud.Build(entities(), nodecloud.DefaultOptions())
	tree, err := Detail(g, "p1", nodecloud.KindPrimary)
	require.NoError(t, err)

	out, err := html.RenderToString(tree)
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>IoT Espresso Machine</h2>")
	assert.Contains(t, out, "Brews over MQTT")
	assert.Contains(t, out, "placehold.co")
	assert.Equal(t, 2, strings.Count(out, `class="nc-tag"`))
}

func TestDetail_Secondary(t *testing.T) {
	g := nodecloud.Build(entities(), nodecloud.DefaultOptions())
	tree, err := Detail(g, "tag-Python", nodecloud.KindSecondary)
	require.NoError(t, err)

	out, err := html.RenderToString(tree)
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Python</h2>")
	assert.Less(t, strings.Index(out, "IoT Espresso Machine"), strings.Index(out, "Radio Telescope"))
}

func TestDetail_Unknown(t *testing.T) {
	g := nodecloud.Build(entities(), nodecloud.DefaultOptions())
	_, err := Detail(g, "p1", nodecloud.KindSecondary)
	assert.True(t, errors.Is(err, nodecloud.ErrUnknownNode))
	_, err = Detail(g, "nope", nodecloud.KindPrimary)
	assert.ErrorIs(t, err, nodecloud.ErrUnknownNode)
}

func TestImageFor(t *testing.T) {
	assert.Equal(t, "/img/eclipse.jpg", ImageFor(entities()[1]))
	assert.Equal(t, "https://placehold.co/800x600/1e293b/0ea5e9?text=IoT+Espresso+Machine", ImageFor(entities()[0]))
}
