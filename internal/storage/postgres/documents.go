package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dexcompanion/internal/storage"
)

var _ storage.Documents = (*DocumentRepository)(nil)

// DocumentRepository persists whole documents in the documents table.
type DocumentRepository struct {
	db    *pgxpool.Pool
	owner *Pool
}

// NewDocumentRepository creates a DocumentRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the documents
// table migrated.
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// OpenDocuments wraps p in a DocumentRepository that closes p on Close.
func OpenDocuments(p *Pool) *DocumentRepository {
	return &DocumentRepository{db: p.DB(), owner: p}
}

// Load returns the document body.
//
// Postcondition: Returns the stored bytes or storage.ErrNotFound.
func (r *DocumentRepository) Load(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := r.db.QueryRow(ctx, `SELECT body FROM documents WHERE name = $1`, name).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying document: %w", err)
	}
	return body, nil
}

// Save upserts the document body.
//
// Precondition: data must be valid JSON.
// Postcondition: the next Load of name returns data.
func (r *DocumentRepository) Save(ctx context.Context, name string, data []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO documents (name, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
		name, data,
	)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Delete removes the document row.
func (r *DocumentRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM documents WHERE name = $1`, name); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// Close closes the owning pool, if the repository was created by OpenDocuments.
func (r *DocumentRepository) Close() error {
	if r.owner != nil {
		r.owner.Close()
	}
	return nil
}
