package project

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("scene not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("scene already exists")
)

// Record is a stored scene document with its metadata.
type Record struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	OwnerID   string          `json:"ownerId"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Version   int             `json:"version"`
	Document  json.RawMessage `json:"document,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Store persists scene documents.
type Store interface {
	Create(ctx context.Context, rec Record) (*Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	// List returns metadata only, newest first.
	List(ctx context.Context) ([]Record, error)
	// Update replaces name, size and document and bumps the version.
	Update(ctx context.Context, rec Record) (*Record, error)
	Delete(ctx context.Context, id string) error
}
