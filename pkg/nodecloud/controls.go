package nodecloud

import "go.uber.org/zap"

// SetSelectionHandler registers the receiver of node clicks; nil unregisters
func (e *Engine) SetSelectionHandler(h SelectionHandler) {
	e.onSelect = h
}

// Interactive reports whether pointer input is honored
func (e *Engine) Interactive() bool {
	return e.opts.Interactive
}

// Dragging reports whether a drag is in progress
func (e *Engine) Dragging() bool {
	return e.dragging
}

// Hovered returns the hovered node id, or ""
func (e *Engine) Hovered() string {
	return e.hovered
}

// BeginDrag starts orbiting from a pointer position. The target orientation
// snaps to the current one so the drag starts without a jump.
func (e *Engine) BeginDrag(x, y float64) {
	if !e.opts.Interactive {
		return
	}
	e.dragging = true
	e.lastX, e.lastY = x, y
	e.target = e.rot
}

// ContinueDrag turns the target orientation by the pointer delta since the
// last recorded position
func (e *Engine) ContinueDrag(x, y float64) {
	if !e.opts.Interactive || !e.dragging {
		return
	}
	dx, dy := x-e.lastX, y-e.lastY
	e.target.Yaw += dx * e.opts.DragSensitivity
	e.target.Pitch += dy * e.opts.DragSensitivity
	e.lastX, e.lastY = x, y
}

// EndDrag stops orbiting. Safe to call at any time.
func (e *Engine) EndDrag() {
	e.dragging = false
}

// Hover sets the hovered node. "" or an id missing from the graph clears it.
func (e *Engine) Hover(id string) {
	if !e.opts.Interactive {
		return
	}
	if _, ok := e.graph.Node(id); !ok {
		e.hovered = ""
		return
	}
	e.hovered = id
}

// Click forwards a selection to the handler. It reports whether the handler
// was invoked; ids missing from the current graph are dropped.
func (e *Engine) Click(id string) bool {
	if !e.opts.Interactive || e.onSelect == nil {
		return false
	}
	n, ok := e.graph.Node(id)
	if !ok {
		e.log.Debug("dropping click on unknown node", zap.String("id", id))
		return false
	}
	e.onSelect(n.ID, n.Kind)
	return true
}
