package svg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/nodecloud/pkg/nodecloud"
)

func frame(t *testing.T, hover string, labels bool) nodecloud.Frame {
	t.Helper()
	o := nodecloud.DefaultOptions()
	o.ShowLabels = labels
	e := nodecloud.New([]nodecloud.Entity{
		{ID: "p1", Title: "Espresso <IoT>", Tags: []string{"IoT", "Python"}},
		{ID: "p2", Title: "Printer", Tags: []string{"Python"}},
	}, o)
	e.Hover(hover)
	f, ok := e.Tick(nodecloud.Viewport{Width: 640, Height: 480})
	require.True(t, ok)
	return f
}

func TestRender(t *testing.T) {
	f := frame(t, "", true)
	var buf strings.Builder
	require.NoError(t, Render(&buf, &f, Options{Background: Background}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `viewBox="0 0 640.00 480.00"`)
	assert.Contains(t, out, `fill="#0f172a"`)
	assert.Equal(t, 3, strings.Count(out, "<line "))
	assert.Equal(t, 2, strings.Count(out, "<circle "), "one badge per primary")
	assert.Equal(t, 2, strings.Count(out, "<rect ")-1, "one pill per tag")
	assert.Contains(t, out, "Espresso &lt;IoT&gt;")
}

func TestRender_PaintOrder(t *testing.T) {
	f := frame(t, "p1", true)
	var buf strings.Builder
	require.NoError(t, Render(&buf, &f, Options{}))
	out := buf.String()

	// highlighted nodes are painted last
	last := strings.LastIndex(out, `data-node="`)
	tail := out[last:]
	assert.True(t, strings.HasPrefix(tail, `data-node="p1"`) ||
		strings.HasPrefix(tail, `data-node="tag-IoT"`) ||
		strings.HasPrefix(tail, `data-node="tag-Python"`), tail)
	assert.Contains(t, out, `style="filter:grayscale(100%) blur(2px)"`)
	assert.Contains(t, out, `stroke="#0ea5e9"`)
}

func TestRender_Dots(t *testing.T) {
	f := frame(t, "", false)
	var buf strings.Builder
	require.NoError(t, Render(&buf, &f, Options{}))
	out := buf.String()
	assert.Equal(t, 4, strings.Count(out, "<circle "))
	assert.NotContains(t, out, "<rect ")
	assert.NotContains(t, out, "<text")
}

func TestRender_EmptyViewport(t *testing.T) {
	var buf strings.Builder
	err := Render(&buf, &nodecloud.Frame{}, Options{})
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}
