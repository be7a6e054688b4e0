package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Document is one ingested source file, deduplicated by content hash.
type Document struct {
	ID          uuid.UUID
	SourcePath  string
	Filename    string
	FileExt     string
	FileSize    int64
	ContentHash []byte
	DocType     string
	Category    string
	UploadedAt  time.Time
}

// ValidationRun is one pipeline execution over a document: extraction,
// validation, and rule evaluation. ReportJSON holds the full validation
// report; FieldsJSON the sanitized extraction.
type ValidationRun struct {
	ID           uuid.UUID
	DocumentID   uuid.UUID
	Status       string
	ModelName    string
	FieldsJSON   []byte
	ReportJSON   []byte
	RiskLevel    string
	ClaimStatus  string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

type DocumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	GetByHash(ctx context.Context, hash []byte) (*Document, error)
	Create(ctx context.Context, doc *Document) (*Document, error)
	// UpsertByHash returns the existing row (true) when the content hash is
	// already known, otherwise inserts and returns the new row (false).
	UpsertByHash(ctx context.Context, doc *Document) (*Document, bool, error)
	SetClassification(ctx context.Context, id uuid.UUID, docType, category string) error
}

type RunRepository interface {
	Start(ctx context.Context, documentID uuid.UUID, status string) (*ValidationRun, error)
	FinishExtraction(ctx context.Context, runID uuid.UUID, modelName string, fieldsJSON []byte, status string) error
	FinishValidation(ctx context.Context, runID uuid.UUID, reportJSON []byte, riskLevel, claimStatus string) error
	FinishFailure(ctx context.Context, runID uuid.UUID, message string) error
	GetByID(ctx context.Context, runID uuid.UUID) (*ValidationRun, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID, limit int) ([]*ValidationRun, error)
}
