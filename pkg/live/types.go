package live

// MessageType is the first byte of every binary message
type MessageType uint8

const (
	// FrameRender carries one projected frame (server to client)
	FrameRender MessageType = 0x00
	// FrameEvent carries one pointer event (client to server)
	FrameEvent MessageType = 0x01
	// FrameControl carries a named control message (both directions)
	FrameControl MessageType = 0x02
)

// EventType is the pointer event kind
type EventType uint8

const (
	EventPointerDown EventType = 0x01
	EventPointerMove EventType = 0x02
	EventPointerUp   EventType = 0x03
	EventHover       EventType = 0x04
	EventClick       EventType = 0x05
	EventResize      EventType = 0x06
)

func (t EventType) String() string {
	switch t {
	case EventPointerDown:
		return "pointerdown"
	case EventPointerMove:
		return "pointermove"
	case EventPointerUp:
		return "pointerup"
	case EventHover:
		return "hover"
	case EventClick:
		return "click"
	case EventResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Control message names
const (
	ControlHello  = "HELLO"
	ControlPing   = "PING"
	ControlPong   = "PONG"
	ControlGraph  = "GRAPH"
	ControlSelect = "SELECT"
	ControlLabels = "LABELS"
)

// Event is a decoded client event. X and Y hold the pointer position for
// pointer events and the viewport size for EventResize; NodeID is set for
// hover and click.
type Event struct {
	Type   EventType
	X, Y   float32
	NodeID string
}

// Control is a decoded control message
type Control struct {
	Name string
	Seq  uint64   // HELLO
	Args []string // SELECT kind id, LABELS on|off
}

// GraphNode describes one overlay element in a GRAPH message
type GraphNode struct {
	ID      string
	Kind    uint8
	Label   string
	Class   string
	OffsetX float32
	OffsetY float32
}

// Graph is the overlay manifest. Render frames address nodes by their index
// in Nodes.
type Graph struct {
	Interactive bool
	ShowLabels  bool
	Nodes       []GraphNode
}

// Node emphasis flags in a render frame
const (
	NodeHidden      uint8 = 1 << 0
	NodeHighlighted uint8 = 1 << 1
	NodeDimmed      uint8 = 1 << 2
)

// RenderNode is one node's placement in a render frame
type RenderNode struct {
	X, Y    float32
	Zoom    float32
	Opacity float32
	Order   int64
	Flags   uint8
}

// RenderLink is one link stroke in a render frame
type RenderLink struct {
	Source, Target uint64 // node indices
	Connected      bool
	Width          float32
	Alpha          float32
}

// Render is a decoded render frame
type Render struct {
	Seq    uint64
	Width  float32
	Height float32
	Hover  int64 // node index, -1 for none
	Nodes  []RenderNode
	Links  []RenderLink
}
