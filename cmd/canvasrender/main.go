// Command canvasrender renders a scene document, or the built-in sample,
// to a PNG or JPEG file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"

	"github.com/inamate/inamate/canvas-go/internal/asset"
	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/engine"
	"github.com/inamate/inamate/canvas-go/internal/export"
)

func main() {
	var (
		in       = flag.String("in", "", "scene document JSON file (default: built-in sample)")
		out      = flag.String("out", "scene.png", "output file; .jpg/.jpeg selects JPEG")
		frame    = flag.Int("frame", 0, "timeline frame to render")
		assetDir = flag.String("assets", "", "asset directory for image nodes")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	gg.SetLogger(logger)

	if err := run(*in, *out, *frame, *assetDir); err != nil {
		slog.Error("render failed", "error", err)
		os.Exit(1)
	}
}

func run(in, out string, frame int, assetDir string) error {
	doc, err := readScene(in)
	if err != nil {
		return err
	}

	var images engine.ImageResolver
	if assetDir != "" {
		store, err := asset.NewStore(assetDir)
		if err != nil {
			return err
		}
		images = store
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := export.NewRenderer(images).WriteImage(f, doc, frame, formatFor(out)); err != nil {
		f.Close()
		os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	slog.Info("rendered", "scene", doc.ID, "frame", frame, "out", out)
	return nil
}

func readScene(path string) (*document.Scene, error) {
	if path == "" {
		return document.NewSampleScene("scene_sample"), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return document.Parse(data)
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	}
	return "png"
}
