package asset

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/inamate/inamate/canvas-go/internal/typeid"
)

var ErrNotFound = errors.New("asset not found")

// Store keeps uploaded images as PNG files named by asset ID and hands
// decoded images to the scene builder.
type Store struct {
	dir string

	mu    sync.Mutex
	cache map[string]image.Image
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{dir: dir, cache: make(map[string]image.Image)}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) path(assetID string) (string, error) {
	if err := typeid.Validate(assetID, typeid.PrefixAsset); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return filepath.Join(s.dir, assetID+".png"), nil
}

// Save decodes a PNG or JPEG from r and stores it as PNG under a new ID.
func (s *Store) Save(r io.Reader) (string, image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}

	assetID := typeid.NewAssetID()
	filePath := filepath.Join(s.dir, assetID+".png")

	out, err := os.Create(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("create asset file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		os.Remove(filePath)
		return "", nil, fmt.Errorf("encode png: %w", err)
	}

	s.mu.Lock()
	s.cache[assetID] = img
	s.mu.Unlock()
	return assetID, img, nil
}

// Load returns the decoded image of assetID. Repeated loads return the
// same image value.
func (s *Store) Load(assetID string) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if img, ok := s.cache[assetID]; ok {
		return img, nil
	}

	p, err := s.path(assetID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, assetID)
		}
		return nil, fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode asset %s: %w", assetID, err)
	}
	s.cache[assetID] = img
	return img, nil
}

// Delete removes an asset file from disk.
func (s *Store) Delete(assetID string) error {
	p, err := s.path(assetID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.cache, assetID)
	s.mu.Unlock()

	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, assetID)
		}
		return fmt.Errorf("remove asset: %w", err)
	}
	return nil
}
