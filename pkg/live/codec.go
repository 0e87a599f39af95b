package live

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/recera/nodecloud/pkg/nodecloud"
)

// ErrMalformed is returned for messages that cannot be decoded
var ErrMalformed = errors.New("malformed message")

// maxCount bounds decoded list lengths
const maxCount = 1 << 16

// Encoder appends protocol values to a byte slice
type Encoder struct {
	buf []byte
}

// NewEncoder creates an encoder with room for n bytes
func NewEncoder(n int) *Encoder {
	return &Encoder{buf: make([]byte, 0, n)}
}

// Bytes returns the encoded message
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// WriteByte appends a single byte
func (e *Encoder) WriteByte(b byte) error {
	e.buf = append(e.buf, b)
	return nil
}

// WriteUvarint appends an unsigned varint
func (e *Encoder) WriteUvarint(v uint64) {
	e.buf = binary.AppendUvarint(e.buf, v)
}

// WriteVarint appends a signed varint
func (e *Encoder) WriteVarint(v int64) {
	e.buf = binary.AppendVarint(e.buf, v)
}

// WriteString appends a length-prefixed string
func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteFloat32 appends a little-endian float32
func (e *Encoder) WriteFloat32(f float32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, math.Float32bits(f))
}

// WriteBool appends 0 or 1
func (e *Encoder) WriteBool(b bool) {
	if b {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

// Decoder reads protocol values from a message
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder creates a decoder over data
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining is the number of unread bytes
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

// ReadByte implements io.ByteReader
func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

// ReadUvarint reads an unsigned varint
func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.data[d.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("uvarint: %w", ErrMalformed)
	}
	d.pos += n
	return v, nil
}

// ReadVarint reads a signed varint
func (d *Decoder) ReadVarint() (int64, error) {
	v, n := binary.Varint(d.data[d.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("varint: %w", ErrMalformed)
	}
	d.pos += n
	return v, nil
}

// ReadString reads a length-prefixed string
func (d *Decoder) ReadString() (string, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if length > uint64(d.Remaining()) {
		return "", fmt.Errorf("string length %d: %w", length, ErrMalformed)
	}
	s := string(d.data[d.pos : d.pos+int(length)])
	d.pos += int(length)
	return s, nil
}

// ReadFloat32 reads a little-endian float32
func (d *Decoder) ReadFloat32() (float32, error) {
	if d.Remaining() < 4 {
		return 0, fmt.Errorf("float32: %w", ErrMalformed)
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(d.data[d.pos:]))
	d.pos += 4
	return v, nil
}

// ReadBool reads a byte as a bool
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	return b != 0, err
}

func (d *Decoder) readCount() (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > maxCount {
		return 0, fmt.Errorf("count %d: %w", n, ErrMalformed)
	}
	return int(n), nil
}

// EncodeEvent encodes a client event
func EncodeEvent(evt Event) []byte {
	e := NewEncoder(16 + len(evt.NodeID))
	e.WriteByte(byte(FrameEvent))
	e.WriteByte(byte(evt.Type))
	switch evt.Type {
	case EventPointerDown, EventPointerMove, EventResize:
		e.WriteFloat32(evt.X)
		e.WriteFloat32(evt.Y)
	case EventHover, EventClick:
		e.WriteString(evt.NodeID)
	}
	return e.Bytes()
}

// DecodeEvent decodes a client event
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	frame, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if MessageType(frame) != FrameEvent {
		return nil, fmt.Errorf("not an event frame: %w", ErrMalformed)
	}
	t, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	evt := &Event{Type: EventType(t)}
	switch evt.Type {
	case EventPointerDown, EventPointerMove, EventResize:
		if evt.X, err = d.ReadFloat32(); err != nil {
			return nil, err
		}
		if evt.Y, err = d.ReadFloat32(); err != nil {
			return nil, err
		}
	case EventHover, EventClick:
		if evt.NodeID, err = d.ReadString(); err != nil {
			return nil, err
		}
	case EventPointerUp:
	default:
		return nil, fmt.Errorf("event type %d: %w", t, ErrMalformed)
	}
	return evt, nil
}

// EncodeControl encodes a control message. HELLO carries Seq; the other
// messages carry Args.
func EncodeControl(c Control) []byte {
	e := NewEncoder(16)
	e.WriteByte(byte(FrameControl))
	e.WriteString(c.Name)
	if c.Name == ControlHello {
		e.WriteUvarint(c.Seq)
		return e.Bytes()
	}
	e.WriteUvarint(uint64(len(c.Args)))
	for _, a := range c.Args {
		e.WriteString(a)
	}
	return e.Bytes()
}

// DecodeControl decodes a control message other than GRAPH
func DecodeControl(data []byte) (*Control, error) {
	d := NewDecoder(data)
	name, err := controlName(d)
	if err != nil {
		return nil, err
	}
	c := &Control{Name: name}
	if name == ControlHello {
		c.Seq, err = d.ReadUvarint()
		return c, err
	}
	if d.Remaining() == 0 {
		return c, nil
	}
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		a, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		c.Args = append(c.Args, a)
	}
	return c, nil
}

func controlName(d *Decoder) (string, error) {
	frame, err := d.ReadByte()
	if err != nil {
		return "", err
	}
	if MessageType(frame) != FrameControl {
		return "", fmt.Errorf("not a control frame: %w", ErrMalformed)
	}
	return d.ReadString()
}

// NewGraph builds the overlay manifest for an engine's current graph
func NewGraph(e *nodecloud.Engine) Graph {
	opts := e.Options()
	nodes := e.Graph().Nodes
	g := Graph{
		Interactive: opts.Interactive,
		ShowLabels:  opts.ShowLabels,
		Nodes:       make([]GraphNode, len(nodes)),
	}
	for i, n := range nodes {
		st := nodecloud.StyleFor(n.Kind, false, false, opts.ShowLabels)
		g.Nodes[i] = GraphNode{
			ID:      n.ID,
			Kind:    uint8(n.Kind),
			Label:   n.Label,
			Class:   st.Class,
			OffsetX: float32(st.OffsetX),
			OffsetY: float32(st.OffsetY),
		}
	}
	return g
}

// EncodeGraph encodes a GRAPH control message
func EncodeGraph(g Graph) []byte {
	e := NewEncoder(32 + len(g.Nodes)*32)
	e.WriteByte(byte(FrameControl))
	e.WriteString(ControlGraph)
	e.WriteBool(g.Interactive)
	e.WriteBool(g.ShowLabels)
	e.WriteUvarint(uint64(len(g.Nodes)))
	for _, n := range g.Nodes {
		e.WriteString(n.ID)
		e.WriteByte(n.Kind)
		e.WriteString(n.Label)
		e.WriteString(n.Class)
		e.WriteFloat32(n.OffsetX)
		e.WriteFloat32(n.OffsetY)
	}
	return e.Bytes()
}

// DecodeGraph decodes a GRAPH control message
func DecodeGraph(data []byte) (*Graph, error) {
	d := NewDecoder(data)
	name, err := controlName(d)
	if err != nil {
		return nil, err
	}
	if name != ControlGraph {
		return nil, fmt.Errorf("control %q is not %s: %w", name, ControlGraph, ErrMalformed)
	}
	g := &Graph{}
	if g.Interactive, err = d.ReadBool(); err != nil {
		return nil, err
	}
	if g.ShowLabels, err = d.ReadBool(); err != nil {
		return nil, err
	}
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	g.Nodes = make([]GraphNode, n)
	for i := range g.Nodes {
		gn := &g.Nodes[i]
		if gn.ID, err = d.ReadString(); err != nil {
			return nil, err
		}
		if gn.Kind, err = d.ReadByte(); err != nil {
			return nil, err
		}
		if gn.Label, err = d.ReadString(); err != nil {
			return nil, err
		}
		if gn.Class, err = d.ReadString(); err != nil {
			return nil, err
		}
		if gn.OffsetX, err = d.ReadFloat32(); err != nil {
			return nil, err
		}
		if gn.OffsetY, err = d.ReadFloat32(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// EncodeFrame encodes a projected frame. index maps node ids to their
// position in the GRAPH manifest the client holds.
func EncodeFrame(f *nodecloud.Frame, index map[string]int) []byte {
	e := NewEncoder(16 + len(f.Nodes)*22 + len(f.Links)*12)
	e.WriteByte(byte(FrameRender))
	e.WriteUvarint(f.Seq)
	e.WriteFloat32(float32(f.Viewport.Width))
	e.WriteFloat32(float32(f.Viewport.Height))
	hover := int64(-1)
	if i, ok := index[f.HoverID]; ok {
		hover = int64(i)
	}
	e.WriteVarint(hover)

	e.WriteUvarint(uint64(len(f.Nodes)))
	for i := range f.Nodes {
		n := &f.Nodes[i]
		var flags uint8
		if n.Hidden {
			flags |= NodeHidden
		}
		switch n.Style.Emphasis {
		case nodecloud.EmphasisHighlighted:
			flags |= NodeHighlighted
		case nodecloud.EmphasisDimmed:
			flags |= NodeDimmed
		}
		e.WriteFloat32(float32(n.X))
		e.WriteFloat32(float32(n.Y))
		e.WriteFloat32(float32(n.Zoom))
		e.WriteFloat32(float32(n.Opacity))
		e.WriteVarint(int64(n.Order))
		e.WriteByte(flags)
	}

	links := 0
	for _, l := range f.Links {
		if _, ok := index[l.Source]; !ok {
			continue
		}
		if _, ok := index[l.Target]; !ok {
			continue
		}
		links++
	}
	e.WriteUvarint(uint64(links))
	for _, l := range f.Links {
		src, ok1 := index[l.Source]
		dst, ok2 := index[l.Target]
		if !ok1 || !ok2 {
			continue
		}
		e.WriteUvarint(uint64(src))
		e.WriteUvarint(uint64(dst))
		e.WriteBool(l.Connected)
		e.WriteFloat32(float32(l.Stroke.Width))
		e.WriteFloat32(float32(l.Stroke.Alpha))
	}
	return e.Bytes()
}

// DecodeFrame decodes a render frame
func DecodeFrame(data []byte) (*Render, error) {
	d := NewDecoder(data)
	frame, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if MessageType(frame) != FrameRender {
		return nil, fmt.Errorf("not a render frame: %w", ErrMalformed)
	}

	r := &Render{}
	if r.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if r.Width, err = d.ReadFloat32(); err != nil {
		return nil, err
	}
	if r.Height, err = d.ReadFloat32(); err != nil {
		return nil, err
	}
	if r.Hover, err = d.ReadVarint(); err != nil {
		return nil, err
	}

	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	r.Nodes = make([]RenderNode, n)
	for i := range r.Nodes {
		rn := &r.Nodes[i]
		for _, f := range []*float32{&rn.X, &rn.Y, &rn.Zoom, &rn.Opacity} {
			if *f, err = d.ReadFloat32(); err != nil {
				return nil, err
			}
		}
		if rn.Order, err = d.ReadVarint(); err != nil {
			return nil, err
		}
		if rn.Flags, err = d.ReadByte(); err != nil {
			return nil, err
		}
	}

	if n, err = d.readCount(); err != nil {
		return nil, err
	}
	r.Links = make([]RenderLink, n)
	for i := range r.Links {
		rl := &r.Links[i]
		if rl.Source, err = d.ReadUvarint(); err != nil {
			return nil, err
		}
		if rl.Target, err = d.ReadUvarint(); err != nil {
			return nil, err
		}
		if rl.Connected, err = d.ReadBool(); err != nil {
			return nil, err
		}
		if rl.Width, err = d.ReadFloat32(); err != nil {
			return nil, err
		}
		if rl.Alpha, err = d.ReadFloat32(); err != nil {
			return nil, err
		}
	}
	return r, nil
}
