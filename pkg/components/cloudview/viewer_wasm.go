//go:build js && wasm

package cloudview

import (
	"strconv"
	"syscall/js"

	"github.com/recera/nodecloud/pkg/nodecloud"
)

// Cloud is a mounted browser viewer. It owns one Engine and drives it from
// requestAnimationFrame until Stop is called.
type Cloud struct {
	engine    *nodecloud.Engine
	container js.Value
	canvas    js.Value
	elements  map[string]js.Value

	funcs     []js.Func
	listeners []listener
	raf       js.Func
	rafID     js.Value
	stopped   bool
}

type listener struct {
	target js.Value
	event  string
	fn     js.Func
}

// Mount builds the cloud inside container and starts animating it
func Mount(container js.Value, entities []nodecloud.Entity, opts nodecloud.Options) *Cloud {
	c := &Cloud{
		engine:    nodecloud.New(entities, opts),
		container: container,
		elements:  make(map[string]js.Value),
	}

	container.Get("classList").Call("add", ContainerClass)
	if c.engine.Interactive() {
		container.Get("classList").Call("add", "nc-interactive")
	}
	doc := js.Global().Get("document")
	c.canvas = doc.Call("createElement", "canvas")
	c.canvas.Set("className", CanvasClass)
	container.Call("appendChild", c.canvas)
	c.buildElements()

	if c.engine.Interactive() {
		c.listen(container, "pointerdown", func(ev js.Value) {
			c.engine.BeginDrag(ev.Get("clientX").Float(), ev.Get("clientY").Float())
		})
		c.listen(container, "pointermove", func(ev js.Value) {
			c.engine.ContinueDrag(ev.Get("clientX").Float(), ev.Get("clientY").Float())
		})
		c.listen(container, "pointerup", func(js.Value) { c.engine.EndDrag() })
		c.listen(container, "pointerleave", func(js.Value) { c.engine.EndDrag() })
	}

	c.raf = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if c.stopped {
			return nil
		}
		c.frame()
		c.rafID = js.Global().Call("requestAnimationFrame", c.raf)
		return nil
	})
	c.rafID = js.Global().Call("requestAnimationFrame", c.raf)
	return c
}

// Engine exposes the underlying engine. Calls must come from the browser's
// event loop, which is the only goroutine touching it.
func (c *Cloud) Engine() *nodecloud.Engine {
	return c.engine
}

// SetEntities swaps the dataset and rebuilds the node elements
func (c *Cloud) SetEntities(entities []nodecloud.Entity) {
	c.engine.SetEntities(entities)
	c.buildElements()
}

// SetShowLabels toggles between labeled and dot rendering
func (c *Cloud) SetShowLabels(show bool) {
	c.engine.SetShowLabels(show)
	c.buildElements()
}

// Stop cancels the animation frame, detaches listeners and empties the
// container. It is safe to call more than once.
func (c *Cloud) Stop() {
	if c.stopped {
		return
	}
	c.stopped = true
	js.Global().Call("cancelAnimationFrame", c.rafID)
	for _, l := range c.listeners {
		l.target.Call("removeEventListener", l.event, l.fn)
	}
	c.clearElements()
	c.canvas.Call("remove")
	for _, fn := range c.funcs {
		fn.Release()
	}
	c.raf.Release()
	c.listeners, c.funcs = nil, nil
}

func (c *Cloud) listen(target js.Value, event string, handler func(ev js.Value)) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) > 0 {
			handler(args[0])
		} else {
			handler(js.Undefined())
		}
		return nil
	})
	target.Call("addEventListener", event, fn)
	c.listeners = append(c.listeners, listener{target: target, event: event, fn: fn})
	c.funcs = append(c.funcs, fn)
}

func (c *Cloud) clearElements() {
	for id, el := range c.elements {
		el.Call("remove")
		delete(c.elements, id)
	}
	kept := c.listeners[:0]
	for _, l := range c.listeners {
		if l.target.Equal(c.container) {
			kept = append(kept, l)
			continue
		}
		l.target.Call("removeEventListener", l.event, l.fn)
		l.fn.Release()
	}
	c.listeners = kept
	c.funcs = c.funcs[:0]
	for _, l := range kept {
		c.funcs = append(c.funcs, l.fn)
	}
}

func (c *Cloud) buildElements() {
	c.clearElements()
	doc := js.Global().Get("document")
	showLabels := c.engine.Options().ShowLabels

	for _, n := range c.engine.Graph().Nodes {
		style := nodecloud.StyleFor(n.Kind, false, false, showLabels)
		el := doc.Call("createElement", "div")
		el.Set("className", "nc-node "+style.Class)
		el.Call("setAttribute", NodeAttr, n.ID)
		el.Call("setAttribute", KindAttr, n.Kind.String())
		el.Set("title", n.Label)
		if showLabels {
			span := doc.Call("createElement", "span")
			span.Set("textContent", n.Label)
			el.Call("appendChild", span)
		}
		c.container.Call("appendChild", el)
		c.elements[n.ID] = el

		if c.engine.Interactive() {
			id := n.ID
			c.listen(el, "mouseenter", func(js.Value) { c.engine.Hover(id) })
			c.listen(el, "mouseleave", func(js.Value) { c.engine.Hover("") })
			c.listen(el, "click", func(ev js.Value) {
				ev.Call("stopPropagation")
				c.engine.Click(id)
			})
		}
	}
}

func (c *Cloud) frame() {
	width := c.container.Get("clientWidth").Float()
	height := c.container.Get("clientHeight").Float()
	f, ok := c.engine.Tick(nodecloud.Viewport{Width: width, Height: height})
	if !ok {
		return
	}

	if c.canvas.Get("width").Float() != width || c.canvas.Get("height").Float() != height {
		c.canvas.Set("width", width)
		c.canvas.Set("height", height)
	}
	ctx := c.canvas.Call("getContext", "2d")
	if ctx.Truthy() {
		ctx.Call("clearRect", 0, 0, width, height)
		for _, l := range f.Links {
			ctx.Call("beginPath")
			ctx.Call("moveTo", l.X1, l.Y1)
			ctx.Call("lineTo", l.X2, l.Y2)
			ctx.Set("strokeStyle", l.Stroke.Color)
			ctx.Set("lineWidth", l.Stroke.Width)
			ctx.Set("globalAlpha", l.Stroke.Alpha)
			ctx.Call("stroke")
		}
		ctx.Set("globalAlpha", 1)
	}

	for i := range f.Nodes {
		n := &f.Nodes[i]
		el, ok := c.elements[n.ID]
		if !ok {
			continue
		}
		st := el.Get("style")
		if n.Hidden {
			st.Set("display", "none")
			continue
		}
		st.Set("display", "")
		st.Set("transform", "translate3d("+px(n.X)+","+px(n.Y)+",0) scale("+num(n.Zoom)+")")
		st.Set("marginLeft", px(n.Style.OffsetX))
		st.Set("marginTop", px(n.Style.OffsetY))
		st.Set("zIndex", strconv.Itoa(n.Order))
		st.Set("opacity", num(n.Opacity))
		st.Set("filter", n.Style.Filter)
	}
}

func px(v float64) string {
	return num(v) + "px"
}
