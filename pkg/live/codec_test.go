package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/nodecloud/pkg/nodecloud"
)

func TestEventRoundTrip(t *testing.T) {
	events := []Event{
		{Type: EventPointerDown, X: 10.5, Y: -3},
		{Type: EventPointerMove, X: 640, Y: 480},
		{Type: EventPointerUp},
		{Type: EventHover, NodeID: "tag-Python"},
		{Type: EventHover},
		{Type: EventClick, NodeID: "espresso"},
		{Type: EventResize, X: 1280, Y: 720},
	}
	for _, evt := range events {
		t.Run(evt.Type.String(), func(t *testing.T) {
			got, err := DecodeEvent(EncodeEvent(evt))
			require.NoError(t, err)
			assert.Equal(t, evt, *got)
		})
	}
}

func TestDecodeEvent_Malformed(t *testing.T) {
	tests := map[string][]byte{
		"empty":          nil,
		"wrong frame":    {byte(FrameControl), byte(EventClick)},
		"unknown event":  {byte(FrameEvent), 0x7f},
		"short float":    {byte(FrameEvent), byte(EventPointerMove), 0, 0},
		"string overrun": {byte(FrameEvent), byte(EventClick), 10, 'a'},
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEvent(data)
			assert.Error(t, err)
		})
	}
}

func TestControlRoundTrip(t *testing.T) {
	hello, err := DecodeControl(EncodeControl(Control{Name: ControlHello, Seq: 42}))
	require.NoError(t, err)
	assert.Equal(t, &Control{Name: ControlHello, Seq: 42}, hello)

	sel, err := DecodeControl(EncodeControl(Control{Name: ControlSelect, Args: []string{"primary", "p1"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"primary", "p1"}, sel.Args)

	pong, err := DecodeControl(EncodeControl(Control{Name: ControlPong}))
	require.NoError(t, err)
	assert.Equal(t, ControlPong, pong.Name)
	assert.Empty(t, pong.Args)

	_, err = DecodeControl([]byte{byte(FrameControl)})
	assert.Error(t, err)
}

func testEngine() *nodecloud.Engine {
	return nodecloud.New([]nodecloud.Entity{
		{ID: "p1", Title: "One", Tags: []string{"A", "B"}},
		{ID: "p2", Title: "Two", Tags: []string{"B"}},
	}, nodecloud.DefaultOptions())
}

func TestGraphRoundTrip(t *testing.T) {
	g := NewGraph(testEngine())
	require.Len(t, g.Nodes, 4)
	assert.Equal(t, "p1", g.Nodes[0].ID)
	assert.Equal(t, "nc-badge", g.Nodes[0].Class)
	assert.Equal(t, float32(-48), g.Nodes[0].OffsetX)
	assert.Equal(t, uint8(nodecloud.KindSecondary), g.Nodes[2].Kind)

	got, err := DecodeGraph(EncodeGraph(g))
	require.NoError(t, err)
	assert.Equal(t, g, *got)

	_, err = DecodeGraph(EncodeControl(Control{Name: ControlPong}))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFrameRoundTrip(t *testing.T) {
	e := testEngine()
	e.Hover("tag-B")
	f, ok := e.Tick(nodecloud.Viewport{Width: 800, Height: 600})
	require.True(t, ok)

	index := map[string]int{}
	for i, n := range e.Graph().Nodes {
		index[n.ID] = i
	}
	r, err := DecodeFrame(EncodeFrame(&f, index))
	require.NoError(t, err)

	assert.Equal(t, f.Seq, r.Seq)
	assert.Equal(t, float32(800), r.Width)
	assert.Equal(t, int64(index["tag-B"]), r.Hover)
	require.Len(t, r.Nodes, len(f.Nodes))
	for i, n := range f.Nodes {
		assert.InDelta(t, n.X, float64(r.Nodes[i].X), 1e-3)
		assert.InDelta(t, n.Zoom, float64(r.Nodes[i].Zoom), 1e-5)
		assert.Equal(t, int64(n.Order), r.Nodes[i].Order)
	}
	assert.NotZero(t, r.Nodes[index["p1"]].Flags&NodeHighlighted)
	assert.NotZero(t, r.Nodes[index["tag-A"]].Flags&NodeDimmed)

	require.Len(t, r.Links, len(f.Links))
	connected := 0
	for _, l := range r.Links {
		if l.Connected {
			connected++
			assert.Equal(t, float32(2.5), l.Width)
		}
	}
	assert.Equal(t, 2, connected)
}

func TestDecodeFrame_Truncated(t *testing.T) {
	e := testEngine()
	f, _ := e.Tick(nodecloud.Viewport{Width: 800, Height: 600})
	data := EncodeFrame(&f, map[string]int{"p1": 0, "p2": 1, "tag-A": 2, "tag-B": 3})
	for _, n := range []int{1, 5, len(data) / 2, len(data) - 1} {
		_, err := DecodeFrame(data[:n])
		assert.Error(t, err, "truncated at %d", n)
	}
}
