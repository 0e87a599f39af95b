// Package nodecloud lays out labeled entities and their shared tags on two
// concentric spheres and turns them into perspective frames.
//
// A cloud is built once from a dataset (Build), then driven by an Engine:
// the host calls Tick once per display refresh and forwards pointer input
// through BeginDrag, ContinueDrag, EndDrag, Hover and Click between ticks.
// Each Tick returns a Frame holding screen-space link strokes and node
// visuals; the package itself never draws.
//
// An Engine is not safe for concurrent use. Hosts that receive input on other
// goroutines must hand it to the ticking goroutine, and dataset changes must
// arrive as a whole new Graph via SetGraph or SetEntities.
package nodecloud
