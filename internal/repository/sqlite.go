package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rajiviyer/medical-doc-extractor/constants"
)

// SQLiteStore backs single-machine CLI runs: the same interfaces as the
// Postgres repositories, one local file, no server. Documents() and Runs()
// expose the two repository views over the shared connection.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	source_path   TEXT NOT NULL,
	filename      TEXT NOT NULL,
	file_ext      TEXT NOT NULL,
	file_size     INTEGER NOT NULL DEFAULT 0,
	content_hash  BLOB NOT NULL,
	doc_type      TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	uploaded_at   TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS documents_content_hash ON documents(content_hash);

CREATE TABLE IF NOT EXISTS validation_runs (
	id            TEXT PRIMARY KEY,
	document_id   TEXT NOT NULL REFERENCES documents(id),
	status        TEXT NOT NULL,
	model_name    TEXT NOT NULL DEFAULT '',
	fields_json   BLOB,
	report_json   BLOB,
	risk_level    TEXT NOT NULL DEFAULT '',
	claim_status  TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP
);
CREATE INDEX IF NOT EXISTS validation_runs_document ON validation_runs(document_id, started_at);
`

// OpenSQLite opens (and bootstraps) a local store at path. ":memory:" works
// for tests.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap sqlite schema: %w", err)
	}
	logger.Info("sqlite store ready", "path", path)
	return &SQLiteStore{db: db, log: logger}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Documents returns the document repository view.
func (s *SQLiteStore) Documents() DocumentRepository {
	return &sqliteDocs{s}
}

// Runs returns the validation-run repository view.
func (s *SQLiteStore) Runs() RunRepository {
	return &sqliteRuns{s}
}

type sqliteDocs struct{ store *SQLiteStore }

const sqliteDocColumns = `id, source_path, filename, file_ext, file_size, content_hash, doc_type, category, uploaded_at`

func (r *sqliteDocs) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	return scanSQLiteDoc(r.store.db.QueryRowContext(ctx,
		`SELECT `+sqliteDocColumns+` FROM documents WHERE id = ?`, id.String()))
}

func (r *sqliteDocs) GetByHash(ctx context.Context, hash []byte) (*Document, error) {
	return scanSQLiteDoc(r.store.db.QueryRowContext(ctx,
		`SELECT `+sqliteDocColumns+` FROM documents WHERE content_hash = ?`, hash))
}

func scanSQLiteDoc(row *sql.Row) (*Document, error) {
	var d Document
	var id string
	err := row.Scan(&id, &d.SourcePath, &d.Filename, &d.FileExt, &d.FileSize,
		&d.ContentHash, &d.DocType, &d.Category, &d.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt document id %q: %w", id, err)
	}
	return &d, nil
}

func (r *sqliteDocs) Create(ctx context.Context, doc *Document) (*Document, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO documents (`+sqliteDocColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID.String(), doc.SourcePath, doc.Filename, doc.FileExt, doc.FileSize,
		doc.ContentHash, doc.DocType, doc.Category, doc.UploadedAt)
	if err != nil {
		r.store.log.Error("failed to create document", "source_path", doc.SourcePath, "error", err)
		return nil, err
	}
	return doc, nil
}

func (r *sqliteDocs) UpsertByHash(ctx context.Context, doc *Document) (*Document, bool, error) {
	existing, err := r.GetByHash(ctx, doc.ContentHash)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	row, err := r.Create(ctx, doc)
	if err != nil {
		return nil, false, err
	}
	return row, false, nil
}

func (r *sqliteDocs) SetClassification(ctx context.Context, id uuid.UUID, docType, category string) error {
	_, err := r.store.db.ExecContext(ctx,
		`UPDATE documents SET doc_type = ?, category = ? WHERE id = ?`,
		docType, category, id.String())
	return err
}

type sqliteRuns struct{ store *SQLiteStore }

const sqliteRunColumns = `id, document_id, status, model_name, fields_json, report_json,
	risk_level, claim_status, error_message, started_at, finished_at`

func (r *sqliteRuns) Start(ctx context.Context, documentID uuid.UUID, status string) (*ValidationRun, error) {
	run := &ValidationRun{
		ID:         uuid.New(),
		DocumentID: documentID,
		Status:     status,
		StartedAt:  time.Now().UTC(),
	}
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO validation_runs (id, document_id, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID.String(), run.DocumentID.String(), run.Status, run.StartedAt)
	if err != nil {
		r.store.log.Error("validation_run start failed", "document_id", documentID, "err", err)
		return nil, err
	}
	return run, nil
}

func (r *sqliteRuns) FinishExtraction(ctx context.Context, runID uuid.UUID, modelName string, fieldsJSON []byte, status string) error {
	_, err := r.store.db.ExecContext(ctx,
		`UPDATE validation_runs SET model_name = ?, fields_json = ?, status = ? WHERE id = ?`,
		modelName, fieldsJSON, status, runID.String())
	return err
}

func (r *sqliteRuns) FinishValidation(ctx context.Context, runID uuid.UUID, reportJSON []byte, riskLevel, claimStatus string) error {
	_, err := r.store.db.ExecContext(ctx,
		`UPDATE validation_runs SET report_json = ?, risk_level = ?, claim_status = ?, status = ?, finished_at = ? WHERE id = ?`,
		reportJSON, riskLevel, claimStatus, string(constants.JobStatusValidated), time.Now().UTC(), runID.String())
	return err
}

func (r *sqliteRuns) FinishFailure(ctx context.Context, runID uuid.UUID, message string) error {
	_, err := r.store.db.ExecContext(ctx,
		`UPDATE validation_runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(constants.JobStatusFailed), message, time.Now().UTC(), runID.String())
	return err
}

func (r *sqliteRuns) GetByID(ctx context.Context, runID uuid.UUID) (*ValidationRun, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT `+sqliteRunColumns+` FROM validation_runs WHERE id = ?`, runID.String())
	var v ValidationRun
	var id, docID string
	var finished sql.NullTime
	err := row.Scan(&id, &docID, &v.Status, &v.ModelName, &v.FieldsJSON, &v.ReportJSON,
		&v.RiskLevel, &v.ClaimStatus, &v.ErrorMessage, &v.StartedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v.ID, _ = uuid.Parse(id)
	v.DocumentID, _ = uuid.Parse(docID)
	if finished.Valid {
		v.FinishedAt = finished.Time
	}
	return &v, nil
}

func (r *sqliteRuns) ListByDocument(ctx context.Context, documentID uuid.UUID, limit int) ([]*ValidationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+sqliteRunColumns+` FROM validation_runs
		 WHERE document_id = ? ORDER BY started_at DESC LIMIT ?`,
		documentID.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ValidationRun
	for rows.Next() {
		var v ValidationRun
		var id, docID string
		var finished sql.NullTime
		if err := rows.Scan(&id, &docID, &v.Status, &v.ModelName, &v.FieldsJSON, &v.ReportJSON,
			&v.RiskLevel, &v.ClaimStatus, &v.ErrorMessage, &v.StartedAt, &finished); err != nil {
			return nil, err
		}
		v.ID, _ = uuid.Parse(id)
		v.DocumentID, _ = uuid.Parse(docID)
		if finished.Valid {
			v.FinishedAt = finished.Time
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}
