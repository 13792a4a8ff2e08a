package asset

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/engine"
)

func testPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveLoadDelete(t *testing.T) {
	s := newTestStore(t)

	id, _, err := s.Save(bytes.NewReader(testPNG(t, 4, 3, color.White)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "asset_") {
		t.Errorf("id = %q", id)
	}

	// A fresh store reads the file from disk.
	fresh, err := NewStore(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	img, err := fresh.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("bounds = %v", b)
	}
	again, _ := fresh.Load(id)
	if again != img {
		t.Error("second Load returned a different image")
	}

	if err := fresh.Delete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := fresh.Load(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after delete err = %v", err)
	}
}

func TestLoadRejectsForeignIDs(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"../etc/passwd", "scene_01h455vb4pex5vsknk084sn02q", ""} {
		if _, err := s.Load(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load(%q) err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestSaveRejectsGarbage(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Save(strings.NewReader("not an image")); err == nil {
		t.Error("Save accepted garbage")
	}
}

func TestStoreResolvesImageNodes(t *testing.T) {
	s := newTestStore(t)
	id, _, err := s.Save(bytes.NewReader(testPNG(t, 8, 8, color.NRGBA{R: 255, A: 255})))
	if err != nil {
		t.Fatal(err)
	}

	doc := &document.Scene{
		ID: "scene", Width: 20, Height: 20, Background: "#ffffff",
		Nodes: []document.Node{
			{ID: "img", Type: document.NodeImage, Pos: []float64{2, 2}, Asset: id},
		},
	}
	eng := engine.NewEngine(engine.WithImages(s))
	defer eng.Close()
	if err := eng.Load(doc); err != nil {
		t.Fatal(err)
	}

	cmds, err := eng.Commands()
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, c := range cmds {
		if c.Op == "image" {
			found = true
			if c.ImageAssetID != id {
				t.Errorf("image asset = %q, want %q", c.ImageAssetID, id)
			}
		}
	}
	if !found {
		t.Error("no image command recorded")
	}
}

func TestUploadHandler(t *testing.T) {
	h := NewHandler(newTestStore(t))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="dot.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(testPNG(t, 2, 5, color.Black))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/assets/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Width != 2 || resp.Height != 5 || resp.Name != "dot.png" {
		t.Errorf("response = %+v", resp)
	}

	serve := httptest.NewRecorder()
	h.Serve().ServeHTTP(serve, httptest.NewRequest(http.MethodGet, resp.URL, nil))
	if serve.Code != http.StatusOK {
		t.Errorf("serve status = %d", serve.Code)
	}
	if cc := serve.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("Cache-Control = %q", cc)
	}

	del := httptest.NewRecorder()
	req = mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/assets/"+resp.ID, nil), map[string]string{"assetId": resp.ID})
	h.Delete(del, req)
	if del.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", del.Code)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	h := NewHandler(newTestStore(t))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="notes.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("plain text pretending to be a png"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/assets/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestServeUnknownNames(t *testing.T) {
	h := NewHandler(newTestStore(t))
	for _, p := range []string{"/assets/", "/assets/readme.txt", "/assets/scene_01h455vb4pex5vsknk084sn02q.png", "/assets/../etc/passwd.png"} {
		rec := httptest.NewRecorder()
		h.Serve().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", p, rec.Code)
		}
	}
}
