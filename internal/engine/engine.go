package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"

	"github.com/inamate/inamate/canvas-go/internal/document"
)

var ErrUnknownNode = errors.New("unknown node")

const (
	defaultWidth  = 640
	defaultHeight = 480
)

// Engine owns a scene document, the surface it is built on and the
// playback state. It is not safe for concurrent use.
type Engine struct {
	doc     *document.Scene
	surface *Surface
	scene   *Scene

	images ImageResolver
	host   Host
	log    *slog.Logger

	defaultW int
	defaultH int

	// Playback state
	frame   int
	playing bool

	selection []string

	recorder *Recorder
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithImages sets the resolver used for image nodes.
func WithImages(r ImageResolver) EngineOption {
	return func(e *Engine) { e.images = r }
}

// WithHost makes the engine build on a live window surface repainted
// through h. Without a host the engine renders offscreen.
func WithHost(h Host) EngineOption {
	return func(e *Engine) { e.host = h }
}

// WithEngineLogger sets the logger for the engine and its surfaces.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithDefaultSize is used for documents that do not set a size.
func WithDefaultSize(width, height int) EngineOption {
	return func(e *Engine) {
		if width > 0 && height > 0 {
			e.defaultW, e.defaultH = width, height
		}
	}
}

// NewEngine creates a new engine instance.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		log:      slog.Default(),
		defaultW: defaultWidth,
		defaultH: defaultHeight,
		recorder: NewRecorder(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --- Commands ---

// LoadDocument loads a scene document from JSON.
func (e *Engine) LoadDocument(jsonData string) error {
	doc, err := document.Parse([]byte(jsonData))
	if err != nil {
		return err
	}
	return e.Load(doc)
}

// LoadSample loads the built-in sample scene.
func (e *Engine) LoadSample(sceneID string) error {
	return e.Load(document.NewSampleScene(sceneID))
}

// Load replaces the current scene with doc, building it on a new surface.
func (e *Engine) Load(doc *document.Scene) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	s, err := e.newSurface(doc)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", doc.ID, err)
	}
	sc, err := BuildScene(doc, s, e.images)
	if err != nil {
		_ = s.Close()
		return err
	}

	if e.surface != nil {
		_ = e.surface.Close()
	}
	e.doc = doc
	e.surface = s
	e.scene = sc
	e.frame = 0
	e.playing = false
	e.selection = nil
	e.recorder.ImageRef = sc.AssetID

	e.log.Info("scene loaded",
		"scene_id", doc.ID,
		"nodes", len(sc.LayerByID)+len(sc.ShapeByID),
		"frames", doc.TotalFrames(),
	)
	return nil
}

func (e *Engine) newSurface(doc *document.Scene) (*Surface, error) {
	w, h := doc.Width, doc.Height
	if w <= 0 || h <= 0 {
		w, h = e.defaultW, e.defaultH
	}
	opts := []SurfaceOption{WithLogger(e.log)}
	if doc.Background != "" {
		bg, err := ParseColor(doc.Background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		opts = append(opts, WithBackground(bg))
	}
	if e.host != nil {
		return NewWindow(w, h, e.host, opts...)
	}
	return NewPixmap(w, h, opts...)
}

// SetPlayhead moves to frame and applies the timeline there.
func (e *Engine) SetPlayhead(frame int) {
	if e.doc == nil {
		return
	}
	total := e.doc.TotalFrames()
	frame = max(0, min(frame, total-1))
	e.frame = frame
	e.applyFrame()
}

// Play starts playback.
func (e *Engine) Play() {
	e.playing = true
}

// Pause stops playback.
func (e *Engine) Pause() {
	e.playing = false
}

// TogglePlay toggles play/pause state.
func (e *Engine) TogglePlay() {
	e.playing = !e.playing
}

// SetSelection sets the selected node IDs.
func (e *Engine) SetSelection(ids []string) {
	e.selection = ids
}

// Advance moves one frame forward when playing, wrapping at the end of
// the timeline. It reports whether the frame changed.
func (e *Engine) Advance() bool {
	if !e.playing || e.doc == nil {
		return false
	}
	e.frame = (e.frame + 1) % e.doc.TotalFrames()
	e.applyFrame()
	return true
}

// Tick advances the frame if playing and returns draw commands.
// This is called once per animation frame from the frontend.
func (e *Engine) Tick() string {
	e.Advance()
	return e.Render()
}

func (e *Engine) applyFrame() {
	if e.doc.Timeline == nil {
		return
	}
	overrides := EvaluateTimeline(e.doc.Timeline, e.frame)
	if err := ApplyOverrides(e.scene, overrides); err != nil {
		e.log.Warn("apply timeline", "frame", e.frame, "error", err)
	}
}

// SetLayerTransform updates any of pos, rot (radians) and scale of a
// layer node. Nil arguments leave that component unchanged.
func (e *Engine) SetLayerTransform(nodeID string, pos []float64, rot *float64, scale []float64) error {
	l, err := e.layer(nodeID)
	if err != nil {
		return err
	}

	var opts []TransformOption
	if pos != nil {
		v, err := ParseVec2(pos...)
		if err != nil {
			return fmt.Errorf("layer %s pos: %w", nodeID, err)
		}
		opts = append(opts, WithPos(v))
	}
	if rot != nil {
		opts = append(opts, WithAngle(*rot))
	}
	if scale != nil {
		v, err := ParseScale(scale...)
		if err != nil {
			return fmt.Errorf("layer %s scale: %w", nodeID, err)
		}
		opts = append(opts, WithScale(v))
	}
	return l.SetTransform(opts...)
}

// DisposeNode removes a layer, with everything beneath it, or a shape.
func (e *Engine) DisposeNode(nodeID string) error {
	if e.scene == nil {
		return fmt.Errorf("dispose %s: %w", nodeID, ErrUnknownNode)
	}
	if l, ok := e.scene.Layer(nodeID); ok {
		e.scene.Forget(nodeID)
		return l.Dispose()
	}
	if s, ok := e.scene.ShapeByID[nodeID]; ok {
		e.scene.Forget(nodeID)
		s.Dispose()
		return nil
	}
	return fmt.Errorf("dispose %s: %w", nodeID, ErrUnknownNode)
}

func (e *Engine) layer(nodeID string) (*Layer, error) {
	if e.scene == nil {
		return nil, fmt.Errorf("layer %s: %w", nodeID, ErrUnknownNode)
	}
	l, ok := e.scene.Layer(nodeID)
	if !ok {
		return nil, fmt.Errorf("layer %s: %w", nodeID, ErrUnknownNode)
	}
	return l, nil
}

// --- Queries ---

// Commands runs a draw pass through a Recorder and returns the commands.
func (e *Engine) Commands() ([]DrawCommand, error) {
	if e.surface == nil {
		return nil, nil
	}
	e.recorder.Reset()
	if err := e.surface.Paint(e.recorder); err != nil {
		return nil, err
	}
	return e.recorder.Commands(), nil
}

// Flush runs a draw pass only if a repaint is pending.
func (e *Engine) Flush() ([]DrawCommand, bool, error) {
	if e.surface == nil || !e.surface.Dirty() {
		return nil, false, nil
	}
	cmds, err := e.Commands()
	if err != nil {
		return nil, false, err
	}
	return cmds, true, nil
}

// Render runs a draw pass and returns the draw commands as JSON.
func (e *Engine) Render() string {
	cmds, err := e.Commands()
	if err != nil {
		e.log.Warn("render", "error", err)
		return "[]"
	}
	result, _ := DrawCommandsToJSON(cmds)
	return result
}

// RenderImage rasterizes an offscreen engine's scene.
func (e *Engine) RenderImage() (*image.RGBA, error) {
	if e.surface == nil {
		return nil, fmt.Errorf("render image: no scene loaded: %w", ErrPreconditionViolation)
	}
	return e.surface.RenderToBuffer()
}

// RenderPNG rasterizes an offscreen engine's scene as PNG.
func (e *Engine) RenderPNG(w io.Writer) error {
	if e.surface == nil {
		return fmt.Errorf("render png: no scene loaded: %w", ErrPreconditionViolation)
	}
	return e.surface.EncodePNG(w)
}

// HitTest returns the node ID of the topmost shape at the given
// coordinates, or empty string.
func (e *Engine) HitTest(x, y float64) string {
	if e.surface == nil {
		return ""
	}
	s := e.surface.HitTest(x, y)
	if s == nil {
		return ""
	}
	return e.scene.NodeID(s.ID())
}

// HitTestResult returns the hit and its layer as a struct.
func (e *Engine) HitTestResult(x, y float64) HitTestResult {
	res := HitTestResult{X: x, Y: y}
	if e.surface == nil {
		return res
	}
	if s := e.surface.HitTest(x, y); s != nil {
		res.ObjectID = e.scene.NodeID(s.ID())
		if !s.Layer().IsRoot() {
			res.LayerID = e.scene.NodeID(s.Layer().ID())
		}
	}
	return res
}

// GetSelectionBounds returns the bounding box of the current selection as JSON.
func (e *Engine) GetSelectionBounds() string {
	if e.scene == nil || len(e.selection) == 0 {
		return RectToJSON(Rect{})
	}
	return RectToJSON(SelectionBounds(e.scene, e.selection))
}

// PlaybackState is the playback snapshot sent to viewers.
type PlaybackState struct {
	Frame       int  `json:"frame"`
	Playing     bool `json:"playing"`
	FPS         int  `json:"fps"`
	TotalFrames int  `json:"totalFrames"`
}

func (e *Engine) Playback() PlaybackState {
	return PlaybackState{
		Frame:       e.frame,
		Playing:     e.playing,
		FPS:         e.GetFPS(),
		TotalFrames: e.GetTotalFrames(),
	}
}

// GetPlaybackState returns the current playback state as JSON.
func (e *Engine) GetPlaybackState() string {
	data, _ := json.Marshal(e.Playback())
	return string(data)
}

// GetScene returns the scene metadata as JSON.
func (e *Engine) GetScene() string {
	if e.doc == nil {
		return "{}"
	}
	w, h, _ := e.surface.Size()
	data, _ := json.Marshal(map[string]any{
		"id":         e.doc.ID,
		"name":       e.doc.Name,
		"width":      w,
		"height":     h,
		"background": e.doc.Background,
	})
	return string(data)
}

// Document returns the loaded document.
func (e *Engine) Document() *document.Scene { return e.doc }

// Surface returns the surface the scene is built on.
func (e *Engine) Surface() *Surface { return e.surface }

// Scene returns the node index of the built scene.
func (e *Engine) Scene() *Scene { return e.scene }

// Dirty reports whether a draw pass is pending.
func (e *Engine) Dirty() bool {
	return e.surface != nil && e.surface.Dirty()
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	data, _ := json.Marshal(e.selection)
	return string(data)
}

// GetFrame returns the current frame number.
func (e *Engine) GetFrame() int {
	return e.frame
}

// IsPlaying returns whether playback is active.
func (e *Engine) IsPlaying() bool {
	return e.playing
}

// GetFPS returns the frames per second.
func (e *Engine) GetFPS() int {
	if e.doc == nil {
		return 24
	}
	return e.doc.FPS()
}

// GetTotalFrames returns the total number of frames.
func (e *Engine) GetTotalFrames() int {
	if e.doc == nil {
		return 0
	}
	return e.doc.TotalFrames()
}

// Close releases the surface.
func (e *Engine) Close() error {
	if e.surface == nil {
		return nil
	}
	return e.surface.Close()
}

// Background returns the surface clear color, or nil.
func (e *Engine) Background() color.Color {
	if e.surface == nil {
		return nil
	}
	return e.surface.background
}
