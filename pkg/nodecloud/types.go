package nodecloud

import (
	"fmt"

	"go.uber.org/zap"
)

// Kind distinguishes the two node populations of a cloud.
type Kind uint8

const (
	// KindPrimary is an outer-shell node for a showcased entity
	KindPrimary Kind = iota
	// KindSecondary is an inner-shell node for a shared tag
	KindSecondary
)

// String returns the wire name of the kind
func (k Kind) String() string {
	switch k {
	case KindPrimary:
		return "primary"
	case KindSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the two populations
func (k Kind) Valid() bool {
	return k == KindPrimary || k == KindSecondary
}

// ParseKind is the inverse of Kind.String
func ParseKind(s string) (Kind, error) {
	switch s {
	case "primary":
		return KindPrimary, nil
	case "secondary":
		return KindSecondary, nil
	default:
		return 0, fmt.Errorf("unknown node kind %q", s)
	}
}

// Point3D is a position in the world frame, centered at the origin
type Point3D struct {
	X, Y, Z float64
}

// Entity is one input record supplied by the host.
// Description and Categories are carried for detail views and ignored by layout.
type Entity struct {
	ID          string   `json:"id" yaml:"id" toml:"id"`
	Title       string   `json:"title" yaml:"title" toml:"title"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty" toml:"image"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description"`
	Categories  []string `json:"categories,omitempty" yaml:"categories,omitempty" toml:"categories"`
	Tags        []string `json:"tags" yaml:"tags" toml:"tags"`
}

// Node is a laid-out member of the cloud
type Node struct {
	ID      string
	Kind    Kind
	Label   string
	Image   string
	Pos     Point3D
	Related []string
}

// Link joins a primary node (Source) to a secondary node (Target)
type Link struct {
	Source string
	Target string
}

// SelectionHandler receives clicks on interactive nodes
type SelectionHandler func(id string, kind Kind)

// Options configures layout, animation and interaction
type Options struct {
	// Mode
	Interactive bool
	ShowLabels  bool
	Scale       float64 // layout multiplier, default 1

	// Layout
	Radius            float64 // default 280
	InnerShellRatio   float64 // default 0.6
	InnerShellOffset  float64 // default 2
	SecondaryIDPrefix string  // default "tag-"
	NormalizeTags     bool

	// Camera and motion
	FocalLength     float64 // default 800
	RotationSpeed   float64 // radians per frame, default 0.001
	DragSensitivity float64 // radians per pixel, default 0.005
	Damping         float64 // fraction of remaining delta per frame in (0, 1), default 0.1
	TimeCorrected   bool

	OnSelect SelectionHandler
	Logger   *zap.Logger
}

// DefaultOptions returns the options of an interactive, labeled cloud
func DefaultOptions() Options {
	return Options{
		Interactive:       true,
		ShowLabels:        true,
		Scale:             1,
		Radius:            280,
		InnerShellRatio:   0.6,
		InnerShellOffset:  2,
		SecondaryIDPrefix: "tag-",
		FocalLength:       800,
		RotationSpeed:     0.001,
		DragSensitivity:   0.005,
		Damping:           0.1,
	}
}

// withDefaults fills zero numeric fields. Mode flags are taken as given.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Scale > 0 {
		d.Scale = o.Scale
	}
	if o.Radius > 0 {
		d.Radius = o.Radius
	}
	if o.InnerShellRatio > 0 {
		d.InnerShellRatio = o.InnerShellRatio
	}
	if o.InnerShellOffset != 0 {
		d.InnerShellOffset = o.InnerShellOffset
	}
	if o.SecondaryIDPrefix != "" {
		d.SecondaryIDPrefix = o.SecondaryIDPrefix
	}
	if o.FocalLength > 0 {
		d.FocalLength = o.FocalLength
	}
	if o.RotationSpeed != 0 {
		d.RotationSpeed = o.RotationSpeed
	}
	if o.DragSensitivity > 0 {
		d.DragSensitivity = o.DragSensitivity
	}
	// damping outside (0,1) would overshoot or never move
	if o.Damping > 0 && o.Damping < 1 {
		d.Damping = o.Damping
	}
	d.Interactive = o.Interactive
	d.ShowLabels = o.ShowLabels
	d.NormalizeTags = o.NormalizeTags
	d.TimeCorrected = o.TimeCorrected
	d.OnSelect = o.OnSelect
	d.Logger = o.Logger
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}
