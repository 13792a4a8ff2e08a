package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps scenes in the Postgres scenes table.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const sceneColumns = `id, name, owner_id, width, height, version, document, created_at, updated_at`

func scanRecord(row pgx.Row, withDoc bool) (*Record, error) {
	var rec Record
	dest := []any{&rec.ID, &rec.Name, &rec.OwnerID, &rec.Width, &rec.Height, &rec.Version}
	if withDoc {
		dest = append(dest, &rec.Document)
	}
	dest = append(dest, &rec.CreatedAt, &rec.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PGStore) Create(ctx context.Context, rec Record) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO scenes (id, name, owner_id, width, height, document)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+sceneColumns,
		rec.ID, rec.Name, rec.OwnerID, rec.Width, rec.Height, rec.Document,
	)
	out, err := scanRecord(row, true)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert scene: %w", err)
	}
	return out, nil
}

func (s *PGStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE id = $1`, id)
	rec, err := scanRecord(row, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get scene: %w", err)
	}
	return rec, nil
}

func (s *PGStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, owner_id, width, height, version, created_at, updated_at
		FROM scenes ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	return records, nil
}

func (s *PGStore) Update(ctx context.Context, rec Record) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE scenes
		SET name = $2, width = $3, height = $4, document = $5,
		    version = version + 1, updated_at = now()
		WHERE id = $1
		RETURNING `+sceneColumns,
		rec.ID, rec.Name, rec.Width, rec.Height, rec.Document,
	)
	out, err := scanRecord(row, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update scene: %w", err)
	}
	return out, nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scenes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
