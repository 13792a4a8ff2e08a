package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestRunSample(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sample.png")
	if err := run("", out, 10, ""); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 200 || cfg.Height != 100 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRunRejectsBadScene(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(in, []byte(`{"width":10,"height":10,"nodes":[{"id":"x","type":"blob"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "bad.png")
	if err := run(in, out, 0, ""); err == nil {
		t.Fatal("run accepted an invalid scene")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output left behind after failure")
	}
}

func TestFormatFor(t *testing.T) {
	for path, want := range map[string]string{"a.png": "png", "a.JPG": "jpeg", "b.jpeg": "jpeg", "c": "png"} {
		if got := formatFor(path); got != want {
			t.Errorf("formatFor(%q) = %q, want %q", path, got, want)
		}
	}
}
