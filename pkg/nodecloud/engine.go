package nodecloud

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// ReferenceFrame is the frame period the per-frame constants are tuned for
const ReferenceFrame = time.Second / 60

// maxCatchUpFrames bounds time-corrected steps after a stall
const maxCatchUpFrames = 10

// Engine is one visualization instance. It owns its graph and its rotation and
// hover state and is driven by exactly one goroutine: the host calls Tick once
// per display frame and calls the interaction methods between ticks.
type Engine struct {
	opts     Options
	log      *zap.Logger
	entities []Entity
	graph    *Graph

	rot    Rotation
	target Rotation

	dragging     bool
	lastX, lastY float64

	hovered  string
	onSelect SelectionHandler

	seq uint64
}

// New builds the graph for entities and returns an idle engine
func New(entities []Entity, opts Options) *Engine {
	o := opts.withDefaults()
	e := &Engine{
		opts:     o,
		log:      o.Logger,
		onSelect: o.OnSelect,
	}
	e.SetEntities(entities)
	return e
}

// Options returns the resolved options
func (e *Engine) Options() Options {
	return e.opts
}

// Graph returns the current node/link collection
func (e *Engine) Graph() *Graph {
	return e.graph
}

// Rotation returns the current orientation
func (e *Engine) Rotation() Rotation {
	return e.rot
}

// Target returns the orientation the current one eases toward
func (e *Engine) Target() Rotation {
	return e.target
}

// SetEntities rebuilds the graph from a new dataset and swaps it in whole
func (e *Engine) SetEntities(entities []Entity) {
	e.entities = append([]Entity(nil), entities...)
	e.SetGraph(Build(e.entities, e.opts))
}

// SetScale changes the layout multiplier and rebuilds the layout
func (e *Engine) SetScale(scale float64) {
	if scale <= 0 || !finite(scale) || scale == e.opts.Scale {
		return
	}
	e.opts.Scale = scale
	e.SetGraph(Build(e.entities, e.opts))
}

// SetShowLabels switches between labeled and minimized rendering
func (e *Engine) SetShowLabels(show bool) {
	e.opts.ShowLabels = show
}

// SetGraph replaces the node/link collection between frames. A hover on a
// node that no longer exists is cleared.
func (e *Engine) SetGraph(g *Graph) {
	g = g.indexed(e.log)
	e.graph = g
	if e.hovered != "" {
		if _, ok := g.Node(e.hovered); !ok {
			e.hovered = ""
		}
	}
	e.log.Debug("graph replaced", zap.Int("nodes", g.Len()))
}

// Tick advances one display frame and projects the cloud into vp.
// ok is false when the viewport has no area yet; the host should keep
// showing its previous frame.
func (e *Engine) Tick(vp Viewport) (f Frame, ok bool) {
	return e.Advance(ReferenceFrame, vp)
}

// Advance is Tick with an explicit elapsed time. dt only matters when the
// engine was created with TimeCorrected.
func (e *Engine) Advance(dt time.Duration, vp Viewport) (Frame, bool) {
	e.step(dt)
	if !vp.Valid() {
		return Frame{}, false
	}
	e.seq++
	return e.project(vp), true
}

func (e *Engine) step(dt time.Duration) {
	frames := 1.0
	damping := e.opts.Damping
	if e.opts.TimeCorrected {
		frames = math.Min(dt.Seconds()/ReferenceFrame.Seconds(), maxCatchUpFrames)
		if frames < 0 || !finite(frames) {
			frames = 0
		}
		damping = 1 - math.Pow(1-damping, frames)
	}

	if !e.dragging && e.hovered == "" {
		e.target.Yaw += e.opts.RotationSpeed * frames
	}
	e.rot.Pitch += (e.target.Pitch - e.rot.Pitch) * damping
	e.rot.Yaw += (e.target.Yaw - e.rot.Yaw) * damping
}

func (e *Engine) project(vp Viewport) Frame {
	g := e.graph
	f := Frame{
		Seq:        e.seq,
		Viewport:   vp,
		Rotation:   e.rot,
		HoverID:    e.hovered,
		ShowLabels: e.opts.ShowLabels,
		Nodes:      make([]NodeVisual, len(g.Nodes)),
	}
	hoverActive := f.HoverActive()
	highlight := e.Highlighted()
	rot := newRotator(e.rot)

	for i := range g.Nodes {
		n := &g.Nodes[i]
		p := rot.apply(n.Pos)
		sx, sy, scale := Project(p, e.opts.FocalLength, vp)
		pn := ProjectedNode{
			ID:    n.ID,
			Kind:  n.Kind,
			Label: n.Label,
			Image: n.Image,
			X:     sx,
			Y:     sy,
			Depth: p.Z,
			Scale: scale,
		}
		v := NodeVisual{ProjectedNode: pn}
		if !n.Kind.Valid() || !finite(sx) || !finite(sy) || !finite(scale) || scale <= 0 {
			v.Hidden = true
			f.Nodes[i] = v
			continue
		}
		v.ZIndex = ZIndex(scale)
		_, lit := highlight[n.ID]
		v.Style = StyleFor(n.Kind, lit, hoverActive, e.opts.ShowLabels)
		v.Zoom = scale * v.Style.ScaleBoost
		v.Opacity = v.Style.Opacity
		if v.Opacity < 0 {
			v.Opacity = DepthOpacity(scale)
		}
		v.Order = v.Style.ZIndex
		if v.Order < 0 {
			v.Order = v.ZIndex
		}
		f.Nodes[i] = v
	}

	f.Links = make([]LinkVisual, 0, len(g.Links))
	for _, l := range g.Links {
		si, sok := g.index[l.Source]
		ti, tok := g.index[l.Target]
		if !sok || !tok {
			continue
		}
		s, t := &f.Nodes[si], &f.Nodes[ti]
		if s.Hidden || t.Hidden {
			continue
		}
		connected := hoverActive && (l.Source == e.hovered || l.Target == e.hovered)
		f.Links = append(f.Links, LinkVisual{
			Source:    l.Source,
			Target:    l.Target,
			X1:        s.X,
			Y1:        s.Y,
			X2:        t.X,
			Y2:        t.Y,
			Connected: connected,
			Stroke:    LinkStyleFor(connected, hoverActive, (s.Scale+t.Scale)/2),
		})
	}
	return f
}

// Highlighted returns the hovered id plus its neighbors, or an empty set
func (e *Engine) Highlighted() map[string]struct{} {
	set := make(map[string]struct{})
	if e.hovered == "" || !e.opts.Interactive {
		return set
	}
	set[e.hovered] = struct{}{}
	for _, id := range e.graph.Neighbors(e.hovered) {
		set[id] = struct{}{}
	}
	return set
}

// Focus turns the target orientation so that id faces the camera
func (e *Engine) Focus(id string) error {
	n, ok := e.graph.Node(id)
	if !ok {
		return fmt.Errorf("focus %q: %w", id, ErrUnknownNode)
	}
	p := n.Pos
	yaw := math.Atan2(p.X, p.Z)
	pitch := math.Atan2(p.Y, math.Hypot(p.X, p.Z))
	e.target = Rotation{
		Pitch: nearestTurn(pitch, e.target.Pitch),
		Yaw:   nearestTurn(yaw, e.target.Yaw),
	}
	return nil
}

// nearestTurn shifts angle by whole turns to land closest to ref
func nearestTurn(angle, ref float64) float64 {
	const turn = 2 * math.Pi
	return angle + math.Round((ref-angle)/turn)*turn
}
