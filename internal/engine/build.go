package engine

import (
	"fmt"
	"image"
	"image/color"
	"slices"
	"strings"

	"github.com/gogpu/gg"
	"github.com/inamate/inamate/canvas-go/internal/document"
)

// ImageResolver loads the raster behind an image node's asset ID.
type ImageResolver interface {
	Load(assetID string) (image.Image, error)
}

// ImageResolverFunc adapts a function to ImageResolver.
type ImageResolverFunc func(assetID string) (image.Image, error)

func (f ImageResolverFunc) Load(assetID string) (image.Image, error) { return f(assetID) }

// BuildScene instantiates doc's nodes under the root layer of s, in
// document order, and indexes them by node ID. On error everything built
// so far is disposed again.
func BuildScene(doc *document.Scene, s *Surface, images ImageResolver) (*Scene, error) {
	b := &builder{
		scene:  NewScene(s),
		images: images,
		assets: make(map[image.Image]string),
	}
	root := s.Root()
	existing := len(root.children)
	for _, n := range doc.Nodes {
		if err := b.node(root, n); err != nil {
			rollback(slices.Clone(root.children[existing:]))
			return nil, fmt.Errorf("build scene %s: %w", doc.ID, err)
		}
	}
	b.scene.assets = b.assets
	return b.scene, nil
}

type builder struct {
	scene  *Scene
	images ImageResolver
	assets map[image.Image]string
}

func rollback(built []any) {
	for _, c := range built {
		switch n := c.(type) {
		case *Layer:
			_ = n.Dispose()
		case Shape:
			n.Dispose()
		}
	}
}

func (b *builder) node(parent *Layer, n document.Node) error {
	if n.Type == document.NodeLayer {
		return b.layer(parent, n)
	}
	s, err := b.shape(parent, n)
	if err != nil {
		return fmt.Errorf("%s %q: %w", n.Type, n.ID, err)
	}
	b.scene.addShape(n.ID, s)
	return nil
}

func (b *builder) layer(parent *Layer, n document.Node) error {
	pos, err := ParseVec2(n.Pos...)
	if err != nil {
		return fmt.Errorf("layer %q pos: %w", n.ID, err)
	}
	opts := []TransformOption{WithPos(pos), WithAngle(n.Rot)}
	if len(n.Scale) > 0 {
		scale, err := ParseScale(n.Scale...)
		if err != nil {
			return fmt.Errorf("layer %q scale: %w", n.ID, err)
		}
		opts = append(opts, WithScale(scale))
	}

	l, err := NewLayer(parent, opts...)
	if err != nil {
		return fmt.Errorf("layer %q: %w", n.ID, err)
	}
	b.scene.addLayer(n.ID, l)
	for _, c := range n.Children {
		if err := b.node(l, c); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) shape(parent *Layer, n document.Node) (Shape, error) {
	pen, err := parseStroke(n.Stroke)
	if err != nil {
		return nil, err
	}

	switch n.Type {
	case document.NodeLine:
		pts, err := parsePoints(n.Points)
		if err != nil {
			return nil, err
		}
		if len(pts) != 2 {
			return nil, fmt.Errorf("line needs 2 points, got %d: %w", len(pts), ErrUnrecognizedInput)
		}
		return NewLine(parent, pts[0], pts[1], pen)

	case document.NodeLines:
		pts, err := parsePoints(n.Points)
		if err != nil {
			return nil, err
		}
		return NewLines(parent, pts, pen)

	case document.NodePolyline:
		pts, err := parsePoints(n.Points)
		if err != nil {
			return nil, err
		}
		return NewPolyline(parent, pts, pen)

	case document.NodeRect:
		pos, size, err := parseBox(n)
		if err != nil {
			return nil, err
		}
		brush, err := parseFill(n.Fill)
		if err != nil {
			return nil, err
		}
		return NewRectangle(parent, pos, size, pen, brush)

	case document.NodeCircle:
		center, err := ParseVec2(n.Pos...)
		if err != nil {
			return nil, err
		}
		brush, err := parseFill(n.Fill)
		if err != nil {
			return nil, err
		}
		return NewCircle(parent, center, n.Radius, pen, brush)

	case document.NodeText:
		pos, size, err := parseBox(n)
		if err != nil {
			return nil, err
		}
		align, err := ParseAlignment(n.Align)
		if err != nil {
			return nil, err
		}
		var font *Font
		if n.Font != nil {
			font = &Font{Source: n.Font.Source, Size: n.Font.Size}
		}
		return NewText(parent, pos, size, align, n.Text, pen, font)

	case document.NodeImage:
		return b.image(parent, n)
	}
	return nil, fmt.Errorf("node type %q: %w", n.Type, ErrUnrecognizedInput)
}

func (b *builder) image(parent *Layer, n document.Node) (Shape, error) {
	if b.images == nil {
		return nil, fmt.Errorf("no image resolver for asset %q: %w", n.Asset, ErrPreconditionViolation)
	}
	img, err := b.images.Load(n.Asset)
	if err != nil {
		return nil, fmt.Errorf("load asset %q: %w", n.Asset, err)
	}
	pos, err := ParseVec2(n.Pos...)
	if err != nil {
		return nil, err
	}

	var size *Vec2
	if len(n.Size) > 0 {
		v, err := ParseVec2(n.Size...)
		if err != nil {
			return nil, err
		}
		size = &v
	}

	var src *image.Rectangle
	switch len(n.Src) {
	case 0:
	case 4:
		r := image.Rect(n.Src[0], n.Src[1], n.Src[0]+n.Src[2], n.Src[1]+n.Src[3])
		src = &r
	default:
		return nil, fmt.Errorf("src rect with %d components: %w", len(n.Src), ErrUnrecognizedInput)
	}

	s, err := NewImage(parent, pos, size, img, src)
	if err != nil {
		return nil, err
	}
	b.assets[img] = n.Asset
	return s, nil
}

func parseBox(n document.Node) (pos, size Vec2, err error) {
	if pos, err = ParseVec2(n.Pos...); err != nil {
		return pos, size, err
	}
	size, err = ParseVec2(n.Size...)
	return pos, size, err
}

func parsePoints(raw [][]float64) ([]Vec2, error) {
	pts := make([]Vec2, 0, len(raw))
	for i, c := range raw {
		p, err := ParseVec2(c...)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		pts = append(pts, p)
	}
	return pts, nil
}

func parseStroke(s *document.Stroke) (*Pen, error) {
	if s == nil {
		return nil, nil
	}
	c, err := ParseColor(s.Color)
	if err != nil {
		return nil, fmt.Errorf("stroke: %w", err)
	}
	width := s.Width
	if width == 0 {
		width = 1
	}
	return &Pen{Color: c, Width: width, Dash: s.Dash}, nil
}

func parseFill(fill string) (*Brush, error) {
	if fill == "" {
		return nil, nil
	}
	c, err := ParseColor(fill)
	if err != nil {
		return nil, fmt.Errorf("fill: %w", err)
	}
	return NewBrush(c), nil
}

// ParseColor accepts #rgb, #rgba, #rrggbb and #rrggbbaa.
func ParseColor(s string) (color.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return nil, fmt.Errorf("color %q: %w", s, ErrUnrecognizedInput)
	}
	for _, c := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return nil, fmt.Errorf("color %q: %w", s, ErrUnrecognizedInput)
		}
	}
	return gg.Hex(hex).Color(), nil
}

// ParseAlignment reads flags such as "left", "center" or "right|bottom".
// An empty string is top-left.
func ParseAlignment(s string) (Alignment, error) {
	var a Alignment
	if s == "" {
		return AlignLeft | AlignTop, nil
	}
	for _, f := range strings.Split(s, "|") {
		switch strings.TrimSpace(strings.ToLower(f)) {
		case "left":
			a |= AlignLeft
		case "right":
			a |= AlignRight
		case "hcenter":
			a |= AlignHCenter
		case "top":
			a |= AlignTop
		case "bottom":
			a |= AlignBottom
		case "vcenter":
			a |= AlignVCenter
		case "center":
			a |= AlignCenter
		default:
			return 0, fmt.Errorf("alignment flag %q: %w", f, ErrUnrecognizedInput)
		}
	}
	return a, nil
}
