//go:build !js || !wasm

package cloudview

import (
	"github.com/recera/nodecloud/pkg/nodecloud"
	"github.com/recera/nodecloud/pkg/vdom"
)

// Viewer returns the overlay markup for a freshly built cloud at its initial
// orientation. Outside the browser there is no animation loop, so the markup
// is a single still frame; a zero viewport yields an empty container.
func Viewer(entities []nodecloud.Entity, opts nodecloud.Options, vp nodecloud.Viewport) *vdom.VNode {
	e := nodecloud.New(entities, opts)
	f, ok := e.Tick(vp)
	if !ok {
		f = nodecloud.Frame{Viewport: vp, ShowLabels: e.Options().ShowLabels}
	}
	return Overlay(&f, e.Interactive())
}
