package engine

import "image"

// Scene indexes a built layer tree by document node ID.
// It does not own the tree: the surface does.
type Scene struct {
	Surface   *Surface
	LayerByID map[string]*Layer
	ShapeByID map[string]Shape

	// engine ID -> document node ID
	nodeIDs map[string]string
	assets  map[image.Image]string
}

// NewScene creates an empty index over s.
func NewScene(s *Surface) *Scene {
	return &Scene{
		Surface:   s,
		LayerByID: make(map[string]*Layer),
		ShapeByID: make(map[string]Shape),
		nodeIDs:   make(map[string]string),
	}
}

func (sc *Scene) addLayer(docID string, l *Layer) {
	if docID == "" {
		return
	}
	sc.LayerByID[docID] = l
	sc.nodeIDs[l.ID()] = docID
}

func (sc *Scene) addShape(docID string, s Shape) {
	if docID == "" {
		return
	}
	sc.ShapeByID[docID] = s
	sc.nodeIDs[s.ID()] = docID
}

// AssetID returns the asset an image shape's raster was loaded from.
func (sc *Scene) AssetID(img image.Image) string {
	return sc.assets[img]
}

// NodeID maps an engine layer or shape ID back to its document node ID.
// Nodes built without a document ID map to their engine ID.
func (sc *Scene) NodeID(engineID string) string {
	if id, ok := sc.nodeIDs[engineID]; ok {
		return id
	}
	return engineID
}

// Layer returns the live layer with the given ID.
func (sc *Scene) Layer(id string) (*Layer, bool) {
	l, ok := sc.LayerByID[id]
	if !ok || l.Disposed() {
		return nil, false
	}
	return l, true
}

// Forget drops a node and, for layers, everything beneath it from the index.
func (sc *Scene) Forget(id string) {
	if l, ok := sc.LayerByID[id]; ok {
		delete(sc.LayerByID, id)
		l.walk(func(child any) {
			switch n := child.(type) {
			case *Layer:
				delete(sc.LayerByID, sc.NodeID(n.ID()))
			case Shape:
				delete(sc.ShapeByID, sc.NodeID(n.ID()))
			}
		})
		return
	}
	delete(sc.ShapeByID, id)
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RectFrom builds a rect from an origin and a size.
func RectFrom(pos, size Vec2) Rect {
	return Rect{X: pos.X, Y: pos.Y, Width: size.X, Height: size.Y}
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// pointsBounds returns the bounding box of a point set.
func pointsBounds(points []Vec2) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
