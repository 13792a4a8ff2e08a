package document

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidScene = errors.New("invalid scene document")
	ErrTooLarge     = errors.New("scene exceeds render limits")
)

// Limits bounds what a scene may ask a renderer to allocate.
type Limits struct {
	MaxWidth  int
	MaxHeight int
	MaxFrames int
}

// DefaultLimits applies when no limits are configured.
var DefaultLimits = Limits{MaxWidth: 4096, MaxHeight: 4096, MaxFrames: 3600}

// Check reports ErrTooLarge when s is bigger than l allows. Zero fields
// in l are unbounded.
func (l Limits) Check(s *Scene) error {
	if (l.MaxWidth > 0 && s.Width > l.MaxWidth) || (l.MaxHeight > 0 && s.Height > l.MaxHeight) {
		return fmt.Errorf("%w: size %dx%d, max %dx%d", ErrTooLarge, s.Width, s.Height, l.MaxWidth, l.MaxHeight)
	}
	if l.MaxFrames > 0 && s.TotalFrames() > l.MaxFrames {
		return fmt.Errorf("%w: %d frames, max %d", ErrTooLarge, s.TotalFrames(), l.MaxFrames)
	}
	return nil
}

// Scene is the declarative description of one canvas: its size, its
// layer tree and an optional timeline that animates layer transforms.
type Scene struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Version    int       `json:"version"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Background string    `json:"background,omitempty"`
	Nodes      []Node    `json:"nodes"`
	Timeline   *Timeline `json:"timeline,omitempty"`
}

type NodeType string

const (
	NodeLayer    NodeType = "layer"
	NodeLine     NodeType = "line"
	NodeLines    NodeType = "lines"
	NodePolyline NodeType = "polyline"
	NodeRect     NodeType = "rect"
	NodeCircle   NodeType = "circle"
	NodeText     NodeType = "text"
	NodeImage    NodeType = "image"
)

// Node is a layer or a shape. Geometry is kept as raw number arrays so
// that malformed vectors reach the engine and are reported there.
//
// Pos is the layer position, the rect/text/image origin, or the circle
// center. Rot is in radians. Scale takes one or two components.
type Node struct {
	ID   string   `json:"id"`
	Type NodeType `json:"type"`

	Pos   []float64 `json:"pos,omitempty"`
	Rot   float64   `json:"rot,omitempty"`
	Scale []float64 `json:"scale,omitempty"`

	Points [][]float64 `json:"points,omitempty"`
	Size   []float64   `json:"size,omitempty"`
	Radius float64     `json:"radius,omitempty"`

	Stroke *Stroke `json:"stroke,omitempty"`
	Fill   string  `json:"fill,omitempty"`

	Text  string `json:"text,omitempty"`
	Align string `json:"align,omitempty"`
	Font  *Font  `json:"font,omitempty"`

	Asset string `json:"asset,omitempty"`
	// Src is the source sub-rectangle [x, y, w, h] in image pixels.
	Src []int `json:"src,omitempty"`

	Children []Node `json:"children,omitempty"`
}

type Stroke struct {
	Color string    `json:"color"`
	Width float64   `json:"width,omitempty"`
	Dash  []float64 `json:"dash,omitempty"`
}

type Font struct {
	Source string  `json:"source,omitempty"`
	Size   float64 `json:"size,omitempty"`
}

type Timeline struct {
	Length int     `json:"length"`
	FPS    int     `json:"fps"`
	Tracks []Track `json:"tracks"`
}

// Track animates one transform component of a layer.
type Track struct {
	NodeID   string     `json:"nodeId"`
	Property Property   `json:"property"`
	Keys     []Keyframe `json:"keys"`
}

type Property string

const (
	PropPosX   Property = "pos.x"
	PropPosY   Property = "pos.y"
	PropRot    Property = "rot"
	PropScaleX Property = "scale.x"
	PropScaleY Property = "scale.y"
)

func (p Property) Valid() bool {
	switch p {
	case PropPosX, PropPosY, PropRot, PropScaleX, PropScaleY:
		return true
	}
	return false
}

type EasingType string

const (
	EasingLinear     EasingType = "linear"
	EasingEaseIn     EasingType = "easeIn"
	EasingEaseOut    EasingType = "easeOut"
	EasingEaseInOut  EasingType = "easeInOut"
	EasingCubicIn    EasingType = "cubicIn"
	EasingCubicOut   EasingType = "cubicOut"
	EasingCubicInOut EasingType = "cubicInOut"
	EasingBounceOut  EasingType = "bounceOut"
)

type Keyframe struct {
	Frame  int        `json:"frame"`
	Value  float64    `json:"value"`
	Easing EasingType `json:"easing,omitempty"`
}

// Parse decodes a scene document and checks its envelope. Node geometry
// is validated when the scene is built.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks sizes, node types, ID uniqueness and timeline tracks.
func (s *Scene) Validate() error {
	if s.Width < 0 || s.Height < 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidScene, s.Width, s.Height)
	}
	seen := make(map[string]NodeType)
	if err := validateNodes(s.Nodes, seen); err != nil {
		return err
	}
	if s.Timeline == nil {
		return nil
	}
	if s.Timeline.Length <= 0 {
		return fmt.Errorf("%w: timeline length %d", ErrInvalidScene, s.Timeline.Length)
	}
	for _, tr := range s.Timeline.Tracks {
		if !tr.Property.Valid() {
			return fmt.Errorf("%w: track property %q", ErrInvalidScene, tr.Property)
		}
		if seen[tr.NodeID] != NodeLayer {
			return fmt.Errorf("%w: track target %q is not a layer", ErrInvalidScene, tr.NodeID)
		}
	}
	return nil
}

func validateNodes(nodes []Node, seen map[string]NodeType) error {
	for _, n := range nodes {
		switch n.Type {
		case NodeLayer, NodeLine, NodeLines, NodePolyline, NodeRect, NodeCircle, NodeText, NodeImage:
		default:
			return fmt.Errorf("%w: node %q has unknown type %q", ErrInvalidScene, n.ID, n.Type)
		}
		if n.ID != "" {
			if _, dup := seen[n.ID]; dup {
				return fmt.Errorf("%w: duplicate node id %q", ErrInvalidScene, n.ID)
			}
			seen[n.ID] = n.Type
		}
		if len(n.Children) > 0 && n.Type != NodeLayer {
			return fmt.Errorf("%w: %s node %q has children", ErrInvalidScene, n.Type, n.ID)
		}
		if err := validateNodes(n.Children, seen); err != nil {
			return err
		}
	}
	return nil
}

// FPS returns the timeline frame rate, defaulting to 24.
func (s *Scene) FPS() int {
	if s.Timeline == nil || s.Timeline.FPS <= 0 {
		return 24
	}
	return s.Timeline.FPS
}

// TotalFrames returns the timeline length, or 1 for a still scene.
func (s *Scene) TotalFrames() int {
	if s.Timeline == nil || s.Timeline.Length <= 0 {
		return 1
	}
	return s.Timeline.Length
}

// NewEmptyScene creates a scene with no nodes.
func NewEmptyScene(id, name string, width, height int) *Scene {
	return &Scene{
		ID:         id,
		Name:       name,
		Version:    1,
		Width:      width,
		Height:     height,
		Background: "#ffffff",
		Nodes:      []Node{},
	}
}
