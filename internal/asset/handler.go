package asset

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

const maxUploadSize = 10 << 20 // 10MB

// UploadResponse is returned from the upload endpoint.
type UploadResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Type   string `json:"type"`
	Name   string `json:"name"`
}

// Handler serves asset upload and retrieval endpoints.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Upload handles POST /assets/upload (multipart form with "file" field).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if kind := sniff(file); kind != "image/png" && kind != "image/jpeg" {
		http.Error(w, "only PNG and JPEG images are supported", http.StatusBadRequest)
		return
	}

	assetID, img, err := h.store.Save(file)
	if err != nil {
		slog.Warn("rejected asset upload", "error", err, "name", header.Filename)
		http.Error(w, "invalid image", http.StatusBadRequest)
		return
	}

	b := img.Bounds()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(UploadResponse{
		ID:     assetID,
		URL:    URL(assetID),
		Width:  b.Dx(),
		Height: b.Dy(),
		Type:   "png",
		Name:   header.Filename,
	})
}

// URL is the public path of a stored asset.
func URL(assetID string) string {
	return "/assets/" + assetID + ".png"
}

// sniff reports the detected content type of f and rewinds it.
func sniff(f multipart.File) string {
	var head [512]byte
	n, _ := io.ReadFull(f, head[:])
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return ""
	}
	return http.DetectContentType(head[:n])
}

// Serve returns an http.Handler for GET /assets/<id>.png. Stored files
// never change, so responses are cacheable forever.
func (h *Handler) Serve() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/assets/")
		assetID, ok := strings.CutSuffix(name, ".png")
		if !ok {
			http.NotFound(w, r)
			return
		}
		p, err := h.store.path(assetID)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		http.ServeFile(w, r, p)
	})
}

// Delete handles DELETE /assets/{assetId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["assetId"]
	if err := h.store.Delete(assetID); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		slog.Error("delete asset", "error", err, "asset_id", assetID)
		http.Error(w, "failed to delete asset", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
