package vdom

import "sort"

// VKind represents the type of virtual node
type VKind uint8

const (
	// KindElement represents a DOM element node
	KindElement VKind = iota
	// KindText represents a text node
	KindText
	// KindFragment groups children without a parent element
	KindFragment
)

// Props holds the attributes of an element. Values are formatted with %v
// when rendered; a bool value marks a boolean attribute.
type Props map[string]any

// VNode is an immutable virtual DOM node
type VNode struct {
	Kind VKind

	// Tag is the element tag name. Only used when Kind == KindElement
	Tag string

	Props Props

	// Kids is nil for text nodes
	Kids []VNode

	// Key identifies the node among its siblings. Overlay elements use the
	// graph node id.
	Key string

	// Text content (only used when Kind == KindText)
	Text string
}

// NewElement creates a new element VNode
func NewElement(tag string, props Props, children ...*VNode) *VNode {
	n := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
		Kids:  collect(children),
	}
	if key, ok := props["key"].(string); ok {
		n.Key = key
	}
	return n
}

// NewText creates a new text VNode
func NewText(text string) *VNode {
	return &VNode{Kind: KindText, Text: text}
}

// NewFragment creates a new fragment VNode
func NewFragment(children ...*VNode) *VNode {
	return &VNode{Kind: KindFragment, Kids: collect(children)}
}

func collect(children []*VNode) []VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}
	return kids
}

// IsElement returns true if this is an element node
func (v VNode) IsElement() bool {
	return v.Kind == KindElement
}

// IsText returns true if this is a text node
func (v VNode) IsText() bool {
	return v.Kind == KindText
}

// Attr returns the attribute value for key, if present
func (v VNode) Attr(key string) (any, bool) {
	if v.Props == nil {
		return nil, false
	}
	val, ok := v.Props[key]
	return val, ok
}

// AttrKeys returns the attribute names in sorted order
func (v VNode) AttrKeys() []string {
	keys := make([]string, 0, len(v.Props))
	for k := range v.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Find returns the first node in depth-first order whose Key matches
func (v *VNode) Find(key string) *VNode {
	if v == nil {
		return nil
	}
	if v.Key == key && key != "" {
		return v
	}
	for i := range v.Kids {
		if found := v.Kids[i].Find(key); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every node depth-first. Returning false skips the node's children.
func (v *VNode) Walk(fn func(*VNode) bool) {
	if v == nil || !fn(v) {
		return
	}
	for i := range v.Kids {
		v.Kids[i].Walk(fn)
	}
}
