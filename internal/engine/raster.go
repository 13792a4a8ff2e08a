package engine

import (
	"image"
	"image/color"
	"reflect"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

const defaultFontSize = 12.0

// DefaultPen is the stroke a shape gets when it does not choose one.
var DefaultPen = Pen{Color: color.Black, Width: 1}

var defaultFontSource = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(goregular.TTF)
})

var (
	fontMu      sync.Mutex
	fontSources = map[string]*text.FontSource{}
)

func loadFontSource(path string) (*text.FontSource, error) {
	if path == "" {
		return defaultFontSource()
	}
	fontMu.Lock()
	defer fontMu.Unlock()
	if src, ok := fontSources[path]; ok {
		return src, nil
	}
	src, err := text.NewFontSourceFromFile(path)
	if err != nil {
		return nil, err
	}
	fontSources[path] = src
	return src, nil
}

// imageCache holds gg buffers converted from source images, keyed by the
// source. Only comparable image values are cached.
type imageCache map[image.Image]*gg.ImageBuf

func (c imageCache) buffer(img image.Image) *gg.ImageBuf {
	cacheable := c != nil && reflect.TypeOf(img).Comparable()
	if cacheable {
		if buf, ok := c[img]; ok {
			return buf
		}
	}
	buf := gg.ImageBufFromImage(img)
	if cacheable {
		c[img] = buf
	}
	return buf
}

// RasterPainter draws into a gg context.
type RasterPainter struct {
	dc     *gg.Context
	pen    *Pen
	brush  *Brush
	face   text.Face
	images imageCache
}

// NewRasterPainter wraps dc. The context's pixels are not cleared.
func NewRasterPainter(dc *gg.Context) *RasterPainter {
	return &RasterPainter{dc: dc, pen: &DefaultPen, images: imageCache{}}
}

// ToGG converts m into gg's row-major layout.
func (m Matrix2D) ToGG() gg.Matrix {
	return gg.Matrix{
		A: m[0], B: m[2], C: m[4],
		D: m[1], E: m[3], F: m[5],
	}
}

func (r *RasterPainter) Clear(c color.Color) {
	r.dc.ClearWithColor(gg.FromColor(c))
}

func (r *RasterPainter) SetWorldTransform(m Matrix2D) {
	r.dc.SetTransform(m.ToGG())
	r.pen = &DefaultPen
	r.brush = nil
}

func (r *RasterPainter) SetStroke(p *Pen) { r.pen = p }
func (r *RasterPainter) SetFill(b *Brush) { r.brush = b }

func (r *RasterPainter) SetFont(f *Font) {
	if f == nil {
		r.face = nil
		return
	}
	src, err := loadFontSource(f.Source)
	if err != nil {
		gg.Logger().Warn("load font, using default face", "source", f.Source, "error", err)
		src, err = defaultFontSource()
		if err != nil {
			return
		}
	}
	size := f.Size
	if size <= 0 {
		size = defaultFontSize
	}
	r.face = src.Face(size)
}

func (r *RasterPainter) DrawLine(from, to Vec2) {
	r.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	r.stroke()
}

func (r *RasterPainter) DrawLines(points []Vec2) {
	for i := 0; i+1 < len(points); i += 2 {
		r.dc.MoveTo(points[i].X, points[i].Y)
		r.dc.LineTo(points[i+1].X, points[i+1].Y)
	}
	r.stroke()
}

func (r *RasterPainter) DrawPolyline(points []Vec2) {
	if len(points) < 2 {
		return
	}
	r.dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	r.stroke()
}

func (r *RasterPainter) DrawRect(rc Rect) {
	r.dc.DrawRectangle(rc.X, rc.Y, rc.Width, rc.Height)
	r.fillAndStroke()
}

func (r *RasterPainter) DrawEllipse(center Vec2, rx, ry float64) {
	r.dc.DrawEllipse(center.X, center.Y, rx, ry)
	r.fillAndStroke()
}

// DrawText places s inside box according to align. Coordinates stay in
// layer space; gg applies the world transform to the glyphs.
func (r *RasterPainter) DrawText(box Rect, align Alignment, s string) {
	if r.face == nil {
		r.SetFont(&Font{Size: defaultFontSize})
		if r.face == nil {
			return
		}
	}
	col := DefaultPen.Color
	if r.pen != nil && r.pen.Color != nil {
		col = r.pen.Color
	}

	ax, ay := align.Anchor()
	r.dc.SetFont(r.face)
	w, h := r.dc.MeasureString(s)
	x := box.X + ax*box.Width - w*ax
	baseline := box.Y + ay*box.Height - h*ay + r.face.Metrics().Ascent

	r.dc.SetColor(col)
	r.dc.DrawString(s, x, baseline)
}

// DrawImage copies src, given in img's own coordinates, into dst.
func (r *RasterPainter) DrawImage(dst Rect, img image.Image, src image.Rectangle) {
	// gg buffers start at (0,0) whatever img.Bounds().Min is.
	region := src.Sub(img.Bounds().Min)
	r.dc.DrawImageEx(r.images.buffer(img), gg.DrawImageOptions{
		X:         dst.X,
		Y:         dst.Y,
		DstWidth:  dst.Width,
		DstHeight: dst.Height,
		SrcRect:   &region,
		Opacity:   1,
	})
}

func (r *RasterPainter) fillAndStroke() {
	if r.brush != nil && r.brush.Color != nil {
		r.dc.SetFillBrush(gg.Solid(gg.FromColor(r.brush.Color)))
		if err := r.dc.FillPreserve(); err != nil {
			gg.Logger().Warn("fill failed", "error", err)
		}
	}
	r.stroke()
}

// stroke outlines and clears the current path. Without a pen the path is
// discarded.
func (r *RasterPainter) stroke() {
	if r.pen == nil || r.pen.Color == nil {
		r.dc.ClearPath()
		return
	}
	width := r.pen.Width
	if width <= 0 {
		width = 1
	}
	r.dc.SetStrokeBrush(gg.Solid(gg.FromColor(r.pen.Color)))
	r.dc.SetLineWidth(width)
	if len(r.pen.Dash) > 0 {
		r.dc.SetDash(r.pen.Dash...)
	} else {
		r.dc.ClearDash()
	}
	if err := r.dc.Stroke(); err != nil {
		gg.Logger().Warn("stroke failed", "error", err)
	}
}
