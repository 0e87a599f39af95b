package nodecloud

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScenarioEngine(t *testing.T) *Engine {
	t.Helper()
	return New(scenarioEntities(), scenarioOptions())
}

func TestProject_Equator(t *testing.T) {
	sx, sy, scale := Project(Point3D{X: 10, Y: -20, Z: 0}, 800, square)
	assert.Equal(t, 1.0, scale)
	assert.Equal(t, 410.0, sx)
	assert.Equal(t, 280.0, sy)
	assert.Equal(t, 100, ZIndex(scale))
}

func TestProject_NearerIsLarger(t *testing.T) {
	_, _, near := Project(Point3D{Z: 100}, 800, square)
	_, _, far := Project(Point3D{Z: -100}, 800, square)
	assert.Greater(t, near, 1.0)
	assert.Less(t, far, 1.0)
	assert.Greater(t, ZIndex(near), ZIndex(far))
}

func TestProject_FocalPlaneClamped(t *testing.T) {
	sx, sy, scale := Project(Point3D{X: 1, Y: 1, Z: 800}, 800, square)
	for _, v := range []float64{sx, sy, scale} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestRotate_DoesNotMutate(t *testing.T) {
	p := Point3D{X: 1, Y: 2, Z: 3}
	q := Rotate(p, Rotation{Pitch: 0.3, Yaw: 1.2})
	assert.Equal(t, Point3D{X: 1, Y: 2, Z: 3}, p)
	assert.InDelta(t, norm(p), norm(q), 1e-12)

	assert.Equal(t, p, Rotate(p, Rotation{}))
}

func TestEngine_IdleDrift(t *testing.T) {
	e := newScenarioEngine(t)
	_, ok := e.Tick(square)
	require.True(t, ok)
	assert.InDelta(t, 0.001, e.Target().Yaw, 1e-15)
	assert.InDelta(t, 0.0001, e.Rotation().Yaw, 1e-15)
	assert.Equal(t, 0.0, e.Target().Pitch)
}

func TestEngine_HoverSuspendsDrift(t *testing.T) {
	e := newScenarioEngine(t)
	e.Hover("p1")
	e.Tick(square)
	assert.Equal(t, 0.0, e.Target().Yaw)

	e.Hover("")
	e.Tick(square)
	assert.InDelta(t, 0.001, e.Target().Yaw, 1e-15)
}

func TestEngine_DampingConverges(t *testing.T) {
	e := newScenarioEngine(t)
	e.BeginDrag(0, 0)
	e.ContinueDrag(200, -100)
	target := e.Target()

	prev := math.Inf(1)
	for i := 0; i < 300; i++ {
		e.Tick(square)
		r := e.Rotation()
		gap := math.Abs(target.Yaw-r.Yaw) + math.Abs(target.Pitch-r.Pitch)
		require.LessOrEqual(t, gap, prev, "tick %d moved away from target", i)
		require.LessOrEqual(t, r.Yaw, target.Yaw, "overshoot on tick %d", i)
		prev = gap
	}
	assert.Less(t, prev, 1e-9)
}

func TestEngine_DragContinuity(t *testing.T) {
	e := newScenarioEngine(t)
	for i := 0; i < 25; i++ {
		e.Tick(square)
	}
	before := e.Rotation()
	require.NotEqual(t, before.Yaw, e.Target().Yaw)

	e.BeginDrag(100, 100)
	assert.Equal(t, before, e.Target(), "target snaps to current")
	assert.True(t, e.Dragging())

	e.ContinueDrag(130, 90)
	sens := e.Options().DragSensitivity
	assert.InDelta(t, before.Yaw+30*sens, e.Target().Yaw, 1e-12)
	assert.InDelta(t, before.Pitch-10*sens, e.Target().Pitch, 1e-12)

	// no drift while dragging
	yaw := e.Target().Yaw
	e.Tick(square)
	assert.Equal(t, yaw, e.Target().Yaw)

	e.EndDrag()
	e.EndDrag()
	assert.False(t, e.Dragging())
	e.ContinueDrag(500, 500)
	assert.Equal(t, yaw, e.Target().Yaw, "move after release is ignored")
}

func TestEngine_ContinueDragWithoutBegin(t *testing.T) {
	e := newScenarioEngine(t)
	e.ContinueDrag(50, 50)
	assert.Equal(t, Rotation{}, e.Target())
}

func TestEngine_HighlightSet(t *testing.T) {
	e := newScenarioEngine(t)
	assert.Empty(t, e.Highlighted())

	e.Hover("tag-B")
	assert.Equal(t, map[string]struct{}{"tag-B": {}, "p1": {}, "p2": {}}, e.Highlighted())

	e.Hover("")
	assert.Empty(t, e.Highlighted())
}

func TestEngine_HoverUnknownClears(t *testing.T) {
	e := newScenarioEngine(t)
	e.Hover("p1")
	require.Equal(t, "p1", e.Hovered())

	e.Hover("missing")
	assert.Empty(t, e.Hovered())
	assert.Empty(t, e.Highlighted())
}

func TestEngine_SetGraphHandBuilt(t *testing.T) {
	e := New(nil, DefaultOptions())
	var picked string
	e.SetSelectionHandler(func(id string, kind Kind) { picked = id })

	e.SetGraph(&Graph{
		Nodes: []Node{
			{ID: "a", Kind: KindPrimary, Label: "Alpha", Pos: Point3D{Z: 280}},
			{ID: "b", Kind: KindSecondary, Label: "Beta", Pos: Point3D{X: 100, Z: 100}},
			{ID: "c", Kind: KindSecondary, Label: "Gamma", Pos: Point3D{Y: 100}},
		},
		Links: []Link{{Source: "a", Target: "b"}, {Source: "c", Target: "a"}},
	})

	f, ok := e.Tick(square)
	require.True(t, ok)
	assert.Len(t, f.Nodes, 3)
	require.Len(t, f.Links, 2)
	assert.Equal(t, Link{Source: "a", Target: "c"}, e.Graph().Links[1], "stored primary first")

	e.Hover("a")
	assert.Equal(t, "a", e.Hovered())
	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}, "c": {}}, e.Highlighted())
	assert.ElementsMatch(t, []string{"a"}, e.Graph().Neighbors("b"))

	assert.True(t, e.Click("b"))
	assert.Equal(t, "b", picked)
	assert.NoError(t, e.Focus("c"))

	ent, ok := e.Graph().Entity("a")
	require.True(t, ok)
	assert.Equal(t, "Alpha", ent.Title)
	assert.Equal(t, []Entity{ent}, e.Graph().PrimariesWithTag("b"))
}

func TestEngine_SetGraphDropsInvalid(t *testing.T) {
	e := New(nil, DefaultOptions())
	e.SetGraph(&Graph{
		Nodes: []Node{
			{ID: "a", Kind: KindPrimary, Pos: Point3D{Z: 280}},
			{ID: "a", Kind: KindSecondary},
			{ID: "", Kind: KindSecondary},
			{ID: "odd", Kind: Kind(7)},
			{ID: "b", Kind: KindSecondary, Pos: Point3D{Z: 100}},
			{ID: "p", Kind: KindPrimary, Pos: Point3D{Z: -280}},
		},
		Links: []Link{
			{Source: "a", Target: "b"},
			{Source: "a", Target: "odd"},
			{Source: "a", Target: "p"},
			{Source: "a", Target: "gone"},
			{Source: "a", Target: "b"},
		},
	})

	g := e.Graph()
	assert.Equal(t, Stats{Primaries: 2, Secondaries: 1, Links: 1}, g.Stats())
	_, ok := g.Node("odd")
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		f, ok := e.Tick(square)
		require.True(t, ok)
		assert.Len(t, f.Links, 1)
	})
}

func TestEngine_TickHidesUnknownKind(t *testing.T) {
	e := newScenarioEngine(t)
	e.Graph().Nodes[0].Kind = Kind(9)

	var f Frame
	require.NotPanics(t, func() {
		var ok bool
		f, ok = e.Tick(square)
		require.True(t, ok)
	})
	assert.True(t, f.Nodes[0].Hidden)
}

func TestEngine_FrameHoverStyling(t *testing.T) {
	e := newScenarioEngine(t)
	e.Hover("p1")
	f, ok := e.Tick(square)
	require.True(t, ok)
	require.True(t, f.HoverActive())

	for _, n := range f.Nodes {
		switch n.ID {
		case "p1", "tag-A", "tag-B":
			assert.Equal(t, EmphasisHighlighted, n.Style.Emphasis, n.ID)
			assert.Equal(t, 1.0, n.Opacity)
			assert.Equal(t, 1000, n.Order)
			assert.InDelta(t, n.Scale*1.1, n.Zoom, 1e-12)
		default:
			assert.Equal(t, EmphasisDimmed, n.Style.Emphasis, n.ID)
			assert.Equal(t, 0.1, n.Opacity)
			assert.Equal(t, DimFilter, n.Style.Filter)
		}
	}
	for _, l := range f.Links {
		if l.Source == "p1" {
			assert.True(t, l.Connected)
			assert.Equal(t, LinkStroke{Color: AccentColor, Width: 2.5, Alpha: 1}, l.Stroke)
		} else {
			assert.False(t, l.Connected)
			assert.Equal(t, 0.05, l.Stroke.Alpha)
		}
	}
}

func TestEngine_FrameDepthStyling(t *testing.T) {
	e := newScenarioEngine(t)
	f, ok := e.Tick(square)
	require.True(t, ok)
	require.Len(t, f.Nodes, 6)
	require.Len(t, f.Links, 5)

	for _, n := range f.Nodes {
		assert.Equal(t, EmphasisNone, n.Style.Emphasis)
		assert.Equal(t, DepthOpacity(n.Scale), n.Opacity)
		assert.Equal(t, ZIndex(n.Scale), n.Order)
		assert.GreaterOrEqual(t, n.Opacity, 0.3)
	}
	for _, l := range f.Links {
		s, _ := f.Node(l.Source)
		d, _ := f.Node(l.Target)
		assert.Equal(t, LinkStyleFor(false, false, (s.Scale+d.Scale)/2), l.Stroke)
		assert.Equal(t, s.X, l.X1)
		assert.Equal(t, d.Y, l.Y2)
	}
}

func TestEngine_ZeroViewport(t *testing.T) {
	e := newScenarioEngine(t)
	for _, vp := range []Viewport{{}, {Width: 100}, {Width: -1, Height: 10}, {Width: math.NaN(), Height: 10}} {
		_, ok := e.Tick(vp)
		assert.False(t, ok)
	}
	assert.Greater(t, e.Target().Yaw, 0.0, "rotation keeps advancing")

	f, ok := e.Tick(square)
	require.True(t, ok)
	assert.Equal(t, uint64(1), f.Seq)
}

func TestEngine_DegenerateGeometry(t *testing.T) {
	o := scenarioOptions()
	o.Radius = 800
	o.FocalLength = 800
	e := New([]Entity{{ID: "solo", Tags: nil}}, o)
	f, ok := e.Tick(square)
	require.True(t, ok)
	for _, n := range f.Nodes {
		if n.Hidden {
			continue
		}
		assert.False(t, math.IsNaN(n.X) || math.IsInf(n.X, 0))
		assert.False(t, math.IsNaN(n.Opacity))
	}
}

func TestEngine_ClickRouting(t *testing.T) {
	type call struct {
		id   string
		kind Kind
	}
	var calls []call
	o := scenarioOptions()
	o.OnSelect = func(id string, kind Kind) { calls = append(calls, call{id, kind}) }
	e := New(scenarioEntities(), o)

	assert.True(t, e.Click("p1"))
	assert.Equal(t, []call{{"p1", KindPrimary}}, calls)

	assert.True(t, e.Click("tag-C"))
	assert.Equal(t, call{"tag-C", KindSecondary}, calls[1])

	assert.False(t, e.Click("gone"))
	assert.Len(t, calls, 2)

	e.SetSelectionHandler(nil)
	assert.False(t, e.Click("p1"))
	assert.Len(t, calls, 2)
}

func TestEngine_Decorative(t *testing.T) {
	calls := 0
	o := scenarioOptions()
	o.Interactive = false
	o.OnSelect = func(string, Kind) { calls++ }
	e := New(scenarioEntities(), o)

	e.BeginDrag(0, 0)
	e.ContinueDrag(100, 100)
	assert.False(t, e.Dragging())
	e.Hover("p1")
	assert.Equal(t, "", e.Hovered())
	assert.False(t, e.Click("p1"))
	assert.Equal(t, 0, calls)

	e.Tick(square)
	assert.InDelta(t, 0.001, e.Target().Yaw, 1e-15, "never pauses for hover")
}

func TestEngine_SetGraphClearsStaleHover(t *testing.T) {
	e := newScenarioEngine(t)
	e.Hover("p3")
	e.SetEntities(scenarioEntities()[:2])
	assert.Equal(t, "", e.Hovered())

	e.Hover("p1")
	e.SetEntities(scenarioEntities())
	assert.Equal(t, "p1", e.Hovered())
}

func TestEngine_SetScale(t *testing.T) {
	e := newScenarioEngine(t)
	n, _ := e.Graph().Node("p1")
	assert.InDelta(t, 280, norm(n.Pos), 1e-9)

	e.SetScale(2)
	n, _ = e.Graph().Node("p1")
	assert.InDelta(t, 560, norm(n.Pos), 1e-9)

	e.SetScale(-1)
	assert.Equal(t, 2.0, e.Options().Scale)
}

func TestEngine_TimeCorrected(t *testing.T) {
	o := scenarioOptions()
	o.TimeCorrected = true
	e := New(scenarioEntities(), o)

	e.Advance(2*ReferenceFrame, square)
	assert.InDelta(t, 0.002, e.Target().Yaw, 1e-12)
	// two frames of 10% damping leave 81% of the gap
	assert.InDelta(t, 0.002*0.19, e.Rotation().Yaw, 1e-12)

	e.Advance(-time.Second, square)
	assert.InDelta(t, 0.002, e.Target().Yaw, 1e-12)
}

func TestEngine_Focus(t *testing.T) {
	e := newScenarioEngine(t)
	require.NoError(t, e.Focus("p2"))
	e.Hover("p2") // holds the drift
	for i := 0; i < 400; i++ {
		e.Advance(0, square)
	}
	n, _ := e.Graph().Node("p2")
	p := Rotate(n.Pos, e.Rotation())
	assert.InDelta(t, 0, p.X, 1e-3)
	assert.InDelta(t, 0, p.Y, 1e-3)
	assert.InDelta(t, 280, p.Z, 1e-3)

	assert.ErrorIs(t, e.Focus("nope"), ErrUnknownNode)
}

func TestFrame_Pick(t *testing.T) {
	e := newScenarioEngine(t)
	f, ok := e.Tick(square)
	require.True(t, ok)

	n, _ := f.Node("p1")
	id, ok := f.Pick(n.X, n.Y)
	require.True(t, ok)
	// a nearer node may overlap, but whatever wins must cover the point
	hit, _ := f.Node(id)
	x0, y0, x1, y1 := hit.Bounds()
	assert.True(t, n.X >= x0 && n.X <= x1 && n.Y >= y0 && n.Y <= y1)
	assert.GreaterOrEqual(t, hit.Order, n.Order)

	_, ok = f.Pick(-1000, -1000)
	assert.False(t, ok)
}

func TestFrame_PaintOrder(t *testing.T) {
	e := newScenarioEngine(t)
	f, _ := e.Tick(square)
	order := f.PaintOrder()
	require.Len(t, order, len(f.Nodes))
	for i := 1; i < len(order); i++ {
		assert.LessOrEqual(t, f.Nodes[order[i-1]].Order, f.Nodes[order[i]].Order)
	}
}
