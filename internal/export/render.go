package export

import (
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/engine"
)

var (
	ErrBadFormat = errors.New("unsupported format")
	ErrBadFrame  = errors.New("frame out of range")
)

const jpegQuality = 90

// Renderer draws scene documents on offscreen pixmap surfaces.
type Renderer struct {
	images engine.ImageResolver
	limits document.Limits
}

type RendererOption func(*Renderer)

// WithLimits replaces document.DefaultLimits.
func WithLimits(l document.Limits) RendererOption {
	return func(r *Renderer) { r.limits = l }
}

func NewRenderer(images engine.ImageResolver, opts ...RendererOption) *Renderer {
	r := &Renderer{images: images, limits: document.DefaultLimits}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) load(doc *document.Scene) (*engine.Engine, error) {
	if err := r.limits.Check(doc); err != nil {
		return nil, err
	}
	eng := engine.NewEngine(engine.WithImages(r.images))
	if err := eng.Load(doc); err != nil {
		eng.Close()
		return nil, err
	}
	return eng, nil
}

// WriteImage renders doc at frame and encodes it as png or jpeg.
func (r *Renderer) WriteImage(w io.Writer, doc *document.Scene, frame int, format string) error {
	if format != "png" && format != "jpeg" {
		return fmt.Errorf("%w: %q", ErrBadFormat, format)
	}
	if frame < 0 || frame >= doc.TotalFrames() {
		return fmt.Errorf("%w: %d of %d", ErrBadFrame, frame, doc.TotalFrames())
	}

	eng, err := r.load(doc)
	if err != nil {
		return err
	}
	defer eng.Close()
	eng.SetPlayhead(frame)

	if format == "png" {
		return eng.RenderPNG(w)
	}
	img, err := eng.RenderImage()
	if err != nil {
		return err
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}

// WriteFrames renders every timeline frame of doc into dir as
// frame_NNNN.png and returns the number of frames written.
func (r *Renderer) WriteFrames(ctx context.Context, doc *document.Scene, dir string) (int, error) {
	eng, err := r.load(doc)
	if err != nil {
		return 0, err
	}
	defer eng.Close()

	total := doc.TotalFrames()
	for frame := 0; frame < total; frame++ {
		if err := ctx.Err(); err != nil {
			return frame, err
		}
		eng.SetPlayhead(frame)
		if err := writeFrame(eng, filepath.Join(dir, fmt.Sprintf(framePattern, frame))); err != nil {
			return frame, fmt.Errorf("frame %d: %w", frame, err)
		}
	}
	return total, nil
}

func writeFrame(eng *engine.Engine, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := eng.RenderPNG(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
