package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks islamqa-ai/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// Insert inserts a single document. The document.ID must be set (UUID).
	Insert(ctx context.Context, doc *DocumentRecord) error
	// GetByID gets a document by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)
	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
	// DeleteAll removes every document (and, via cascade, every chunk).
	// Used when rebuilding the index at startup.
	DeleteAll(ctx context.Context) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Insert inserts a single document. The document.ID must be set (UUID).
func (r *DocumentRepo) Insert(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO documents (id, source, reference, text) VALUES (?, ?, ?, ?)",
		doc.ID, doc.Source, doc.Reference, doc.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID gets a document by its ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*DocumentRecord, error) {
	var doc DocumentRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, source, reference, text, created_at FROM documents WHERE id = ?",
		id,
	).Scan(&doc.ID, &doc.Source, &doc.Reference, &doc.Text, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return &doc, nil
}

// Count returns the number of stored documents.
func (r *DocumentRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// DeleteAll removes every document and cascades to chunks.
func (r *DocumentRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}
