package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajiviyer/medical-doc-extractor/constants"
)

type runRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewRunRepository(pool *pgxpool.Pool, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepo{pool: pool, log: logger}
}

const runColumns = `id, document_id, status, model_name, fields_json, report_json,
	risk_level, claim_status, error_message, started_at, finished_at`

func scanRun(row pgx.Row) (*ValidationRun, error) {
	var v ValidationRun
	err := row.Scan(&v.ID, &v.DocumentID, &v.Status, &v.ModelName, &v.FieldsJSON,
		&v.ReportJSON, &v.RiskLevel, &v.ClaimStatus, &v.ErrorMessage, &v.StartedAt, &v.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *runRepo) Start(ctx context.Context, documentID uuid.UUID, status string) (*ValidationRun, error) {
	run := &ValidationRun{
		ID:         uuid.New(),
		DocumentID: documentID,
		Status:     status,
		StartedAt:  time.Now().UTC(),
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO validation_runs (id, document_id, status, started_at)
		 VALUES ($1, $2, $3, $4)`,
		run.ID, run.DocumentID, run.Status, run.StartedAt)
	if err != nil {
		r.log.Error("validation_run start failed", "document_id", documentID, "err", err)
		return nil, err
	}
	r.log.Info("validation_run started", "run_id", run.ID, "document_id", documentID)
	return run, nil
}

func (r *runRepo) FinishExtraction(ctx context.Context, runID uuid.UUID, modelName string, fieldsJSON []byte, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE validation_runs SET model_name = $2, fields_json = $3, status = $4 WHERE id = $1`,
		runID, modelName, fieldsJSON, status)
	if err != nil {
		r.log.Error("validation_run extraction update failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Info("validation_run extraction stored", "run_id", runID, "model", modelName)
	return nil
}

func (r *runRepo) FinishValidation(ctx context.Context, runID uuid.UUID, reportJSON []byte, riskLevel, claimStatus string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE validation_runs
		 SET report_json = $2, risk_level = $3, claim_status = $4, status = $5, finished_at = $6
		 WHERE id = $1`,
		runID, reportJSON, riskLevel, claimStatus, string(constants.JobStatusValidated), time.Now().UTC())
	if err != nil {
		r.log.Error("validation_run finish failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Info("validation_run finished", "run_id", runID, "risk_level", riskLevel, "claim_status", claimStatus)
	return nil
}

func (r *runRepo) FinishFailure(ctx context.Context, runID uuid.UUID, message string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE validation_runs SET status = $2, error_message = $3, finished_at = $4 WHERE id = $1`,
		runID, string(constants.JobStatusFailed), message, time.Now().UTC())
	if err != nil {
		r.log.Error("validation_run finish(FAILED) failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Warn("validation_run finished (FAILED)", "run_id", runID, "error", message)
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, runID uuid.UUID) (*ValidationRun, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM validation_runs WHERE id = $1`, runID)
	return scanRun(row)
}

func (r *runRepo) ListByDocument(ctx context.Context, documentID uuid.UUID, limit int) ([]*ValidationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+runColumns+` FROM validation_runs
		 WHERE document_id = $1 ORDER BY started_at DESC LIMIT $2`,
		documentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ValidationRun
	for rows.Next() {
		v, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
