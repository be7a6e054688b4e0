package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type documentRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{pool: pool, logger: logger}
}

const documentColumns = `id, source_path, filename, file_ext, file_size, content_hash, doc_type, category, uploaded_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.SourcePath, &d.Filename, &d.FileExt, &d.FileSize,
		&d.ContentHash, &d.DocType, &d.Category, &d.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

func (r *documentRepo) GetByHash(ctx context.Context, hash []byte) (*Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE content_hash = $1`, hash)
	return scanDocument(row)
}

func (r *documentRepo) Create(ctx context.Context, doc *Document) (*Document, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO documents (`+documentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		doc.ID, doc.SourcePath, doc.Filename, doc.FileExt, doc.FileSize,
		doc.ContentHash, doc.DocType, doc.Category, doc.UploadedAt)
	if err != nil {
		r.logger.Error("failed to create document", "source_path", doc.SourcePath, "error", err)
		return nil, err
	}
	return doc, nil
}

func (r *documentRepo) UpsertByHash(ctx context.Context, doc *Document) (*Document, bool, error) {
	existing, err := r.GetByHash(ctx, doc.ContentHash)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		r.logger.Error("failed to look up document by hash", "source_path", doc.SourcePath, "error", err)
		return nil, false, err
	}
	row, err := r.Create(ctx, doc)
	if err != nil {
		return nil, false, err
	}
	return row, false, nil
}

func (r *documentRepo) SetClassification(ctx context.Context, id uuid.UUID, docType, category string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE documents SET doc_type = $2, category = $3 WHERE id = $1`,
		id, docType, category)
	if err != nil {
		r.logger.Error("failed to update document classification", "document_id", id, "error", err)
	}
	return err
}
