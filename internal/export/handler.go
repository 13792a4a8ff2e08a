package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/engine"
	"github.com/inamate/inamate/canvas-go/internal/project"
	"github.com/inamate/inamate/canvas-go/internal/typeid"
)

const maxRequestSize = 10 << 20 // 10MB

// DocumentSource looks up stored scene documents.
type DocumentSource interface {
	Document(ctx context.Context, sceneID string) (*document.Scene, error)
}

type Handler struct {
	scenes   DocumentSource
	renderer *Renderer
	encoder  *Encoder
}

func NewHandler(scenes DocumentSource, renderer *Renderer, encoder *Encoder) *Handler {
	return &Handler{scenes: scenes, renderer: renderer, encoder: encoder}
}

// exportRequest names a stored scene or carries an inline document.
type exportRequest struct {
	SceneID  string          `json:"sceneId"`
	Document *document.Scene `json:"document"`
	Format   string          `json:"format"`
	Frame    int             `json:"frame"`
	FPS      int             `json:"fps"`
	Name     string          `json:"name"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*exportRequest, *document.Scene, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil, nil, false
	}

	switch {
	case req.Document != nil:
		if err := req.Document.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, nil, false
		}
		return &req, req.Document, true
	case req.SceneID != "":
		doc, err := h.scenes.Document(r.Context(), req.SceneID)
		if err != nil {
			if errors.Is(err, project.ErrNotFound) {
				http.Error(w, "scene not found", http.StatusNotFound)
				return nil, nil, false
			}
			slog.Error("load scene for export", "error", err, "scene_id", req.SceneID)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return nil, nil, false
		}
		return &req, doc, true
	}
	http.Error(w, "sceneId or document is required", http.StatusBadRequest)
	return nil, nil, false
}

// ExportImage handles POST /export/image.
func (h *Handler) ExportImage(w http.ResponseWriter, r *http.Request) {
	req, doc, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.Format == "" {
		req.Format = "png"
	}

	var buf bytes.Buffer
	if err := h.renderer.WriteImage(&buf, doc, req.Frame, req.Format); err != nil {
		writeRenderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/"+req.Format)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, fileName(req.Name, doc), extension(req.Format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// ExportVideo handles POST /export/video.
func (h *Handler) ExportVideo(w http.ResponseWriter, r *http.Request) {
	req, doc, ok := h.decode(w, r)
	if !ok {
		return
	}

	contentType, ok := videoContentTypes[req.Format]
	if !ok {
		http.Error(w, "invalid format: must be mp4, gif, or webm", http.StatusBadRequest)
		return
	}

	fps := req.FPS
	if fps <= 0 || fps > 120 {
		fps = doc.FPS()
	}

	exportID := typeid.NewExportID()
	tempDir, err := os.MkdirTemp("", exportID+"-*")
	if err != nil {
		slog.Error("create temp dir", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tempDir)

	frames, err := h.renderer.WriteFrames(r.Context(), doc, tempDir)
	if err != nil {
		writeRenderError(w, err)
		return
	}

	slog.Info("export started", "export_id", exportID, "format", req.Format, "frames", frames, "fps", fps)

	outputFile, err := h.encoder.Encode(r.Context(), tempDir, req.Format, fps)
	if err != nil {
		slog.Error("ffmpeg failed", "export_id", exportID, "error", err)
		http.Error(w, fmt.Sprintf("encoding failed: %v", err), http.StatusInternalServerError)
		return
	}

	outFile, err := os.Open(outputFile)
	if err != nil {
		slog.Error("open output file", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer outFile.Close()

	stat, err := outFile.Stat()
	if err != nil {
		slog.Error("stat output file", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, fileName(req.Name, doc), req.Format))
	w.Header().Set("Content-Length", strconv.FormatInt(stat.Size(), 10))
	io.Copy(w, outFile)

	slog.Info("export complete", "export_id", exportID, "format", req.Format, "size", stat.Size())
}

func writeRenderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadFormat), errors.Is(err, ErrBadFrame),
		errors.Is(err, document.ErrInvalidScene),
		errors.Is(err, document.ErrTooLarge),
		errors.Is(err, engine.ErrUnrecognizedInput),
		errors.Is(err, engine.ErrPreconditionViolation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

func extension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

// fileName sanitizes the requested name, falling back to the scene name.
func fileName(name string, doc *document.Scene) string {
	if name == "" {
		name = doc.Name
	}
	if name == "" {
		name = "scene"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
