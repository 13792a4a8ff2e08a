package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/engine"
	"github.com/inamate/inamate/canvas-go/internal/typeid"
)

// ErrInvalidDocument wraps every reason a scene document is refused.
var ErrInvalidDocument = errors.New("invalid scene document")

type Service struct {
	store         Store
	images        engine.ImageResolver
	defaultWidth  int
	defaultHeight int
	limits        document.Limits
}

type Option func(*Service)

// WithImages lets the service check image nodes against the asset store.
func WithImages(r engine.ImageResolver) Option {
	return func(s *Service) { s.images = r }
}

func WithDefaultSize(width, height int) Option {
	return func(s *Service) {
		s.defaultWidth, s.defaultHeight = width, height
	}
}

// WithLimits bounds the size and length of stored scenes.
func WithLimits(l document.Limits) Option {
	return func(s *Service) { s.limits = l }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, defaultWidth: 640, defaultHeight: 480, limits: document.DefaultLimits}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams describes a new scene. When Document is nil an empty
// scene of the requested (or default) size is seeded.
type CreateParams struct {
	Name     string
	Width    int
	Height   int
	Document *document.Scene
}

func (s *Service) Create(ctx context.Context, p CreateParams, ownerID string) (*Record, error) {
	sceneID := typeid.NewSceneID()

	doc := p.Document
	if doc == nil {
		w, h := p.Width, p.Height
		if w <= 0 || h <= 0 {
			w, h = s.defaultWidth, s.defaultHeight
		}
		doc = document.NewEmptyScene(sceneID, p.Name, w, h)
	} else {
		doc.ID = sceneID
		if p.Name != "" {
			doc.Name = p.Name
		}
	}

	rec, err := s.record(doc)
	if err != nil {
		return nil, err
	}
	rec.OwnerID = ownerID

	return s.store.Create(ctx, *rec)
}

func (s *Service) Get(ctx context.Context, sceneID string) (*Record, error) {
	return s.store.Get(ctx, sceneID)
}

func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.store.List(ctx)
}

// Document loads and decodes the stored document of sceneID.
func (s *Service) Document(ctx context.Context, sceneID string) (*document.Scene, error) {
	rec, err := s.store.Get(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(rec.Document)
	if err != nil {
		return nil, fmt.Errorf("decode scene %s: %w", sceneID, err)
	}
	return doc, nil
}

// Update replaces the document of sceneID. Only the owner may write.
func (s *Service) Update(ctx context.Context, sceneID, userID string, doc *document.Scene) (*Record, error) {
	cur, err := s.store.Get(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if cur.OwnerID != userID {
		return nil, ErrForbidden
	}

	doc.ID = sceneID
	if doc.Name == "" {
		doc.Name = cur.Name
	}
	rec, err := s.record(doc)
	if err != nil {
		return nil, err
	}
	return s.store.Update(ctx, *rec)
}

func (s *Service) Delete(ctx context.Context, sceneID, userID string) error {
	cur, err := s.store.Get(ctx, sceneID)
	if err != nil {
		return err
	}
	if cur.OwnerID != userID {
		return ErrForbidden
	}
	return s.store.Delete(ctx, sceneID)
}

// record checks that doc builds and serializes it for storage.
func (s *Service) record(doc *document.Scene) (*Record, error) {
	if strings.TrimSpace(doc.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDocument)
	}
	if err := s.check(doc); err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return &Record{
		ID:       doc.ID,
		Name:     doc.Name,
		Width:    doc.Width,
		Height:   doc.Height,
		Document: data,
	}, nil
}

// check builds doc on a throwaway offscreen engine.
func (s *Service) check(doc *document.Scene) error {
	if err := s.limits.Check(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	eng := engine.NewEngine(
		engine.WithImages(s.images),
		engine.WithDefaultSize(s.defaultWidth, s.defaultHeight),
	)
	defer eng.Close()

	if err := eng.Load(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}
