package nodecloud

import (
	"fmt"
	"math"
)

// Shape is the visual form of a node element
type Shape uint8

const (
	// ShapeBadge is a round badge with an image or title
	ShapeBadge Shape = iota
	// ShapePill is a rounded text label
	ShapePill
	// ShapeDot is a bare marker used when labels are off
	ShapeDot
)

func (s Shape) String() string {
	switch s {
	case ShapeBadge:
		return "badge"
	case ShapePill:
		return "pill"
	case ShapeDot:
		return "dot"
	default:
		return fmt.Sprintf("Shape(%d)", uint8(s))
	}
}

// Emphasis is the highlight membership of a node during a frame
type Emphasis uint8

const (
	// EmphasisNone means no hover is active
	EmphasisNone Emphasis = iota
	// EmphasisHighlighted means the node is in the highlight set
	EmphasisHighlighted
	// EmphasisDimmed means a hover is active elsewhere
	EmphasisDimmed
)

// Colors shared by the renderers
const (
	AccentColor   = "#0ea5e9"
	LinkColor     = "#cbd5e1"
	PrimaryColor  = "#06b6d4"
	SecondaryDot  = "#475569"
	BadgeFill     = "#1e293b"
	PillFill      = "#1e293b"
	LabelColor    = "#f1f5f9"
	PillTextColor = "#cbd5e1"

	DimFilter = "grayscale(100%) blur(2px)"
)

// Style describes how one node element is drawn. Opacity and ZIndex of -1
// mean "use the depth-derived value for this frame".
type Style struct {
	Shape      Shape
	Class      string
	Width      float64 // 0 means sized by content
	Height     float64
	OffsetX    float64 // element origin relative to the projected point
	OffsetY    float64
	Fill       string
	TextColor  string
	ScaleBoost float64
	Opacity    float64
	ZIndex     int
	Filter     string
	Emphasis   Emphasis
}

// StyleFor maps kind and highlight state to a node style. It is pure.
func StyleFor(kind Kind, highlighted, hoverActive, showLabels bool) Style {
	var s Style
	switch {
	case !showLabels:
		s = Style{Shape: ShapeDot, Width: 12, Height: 12, OffsetX: -6, OffsetY: -6}
		switch kind {
		case KindPrimary:
			s.Class, s.Fill = "nc-dot nc-primary", PrimaryColor
		case KindSecondary:
			s.Class, s.Fill = "nc-dot nc-secondary", SecondaryDot
		default:
			panic(fmt.Sprintf("nodecloud: unhandled kind %v", kind))
		}
	case kind == KindPrimary:
		s = Style{
			Shape: ShapeBadge, Class: "nc-badge",
			Width: 96, Height: 96, OffsetX: -48, OffsetY: -48,
			Fill: BadgeFill, TextColor: LabelColor,
		}
	case kind == KindSecondary:
		s = Style{
			Shape: ShapePill, Class: "nc-pill",
			OffsetX: -40, OffsetY: -10,
			Fill: PillFill, TextColor: PillTextColor,
		}
	default:
		panic(fmt.Sprintf("nodecloud: unhandled kind %v", kind))
	}

	s.ScaleBoost = 1
	s.Opacity = -1
	s.ZIndex = -1
	s.Filter = "none"
	if !hoverActive {
		return s
	}
	if highlighted {
		s.Emphasis = EmphasisHighlighted
		s.ScaleBoost = 1.1
		s.Opacity = 1
		s.ZIndex = 1000
		return s
	}
	s.Emphasis = EmphasisDimmed
	s.Opacity = 0.1
	s.ZIndex = 0
	s.Filter = DimFilter
	return s
}

// DepthOpacity is the baseline node opacity at a perspective scale
func DepthOpacity(scale float64) float64 {
	return clamp(scale-0.2, 0.3, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// LinkStroke is how one link is drawn for a frame
type LinkStroke struct {
	Color string
	Width float64
	Alpha float64
}

// LinkStyleFor maps hover state to a link stroke. avgScale is the mean
// perspective scale of both endpoints.
func LinkStyleFor(connected, hoverActive bool, avgScale float64) LinkStroke {
	if hoverActive {
		if connected {
			return LinkStroke{Color: AccentColor, Width: 2.5, Alpha: 1}
		}
		return LinkStroke{Color: LinkColor, Width: 0.5, Alpha: 0.05}
	}
	return LinkStroke{Color: LinkColor, Width: 1.5, Alpha: clamp(avgScale-0.4, 0.1, 1)}
}
