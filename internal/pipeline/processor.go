// Package pipeline coordinates the full document flow: text extraction,
// LLM field extraction, field validation, and rule evaluation, with run
// state persisted at each stage boundary.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rajiviyer/medical-doc-extractor/constants"
	"github.com/rajiviyer/medical-doc-extractor/internal/classify"
	"github.com/rajiviyer/medical-doc-extractor/internal/common"
	"github.com/rajiviyer/medical-doc-extractor/internal/extract"
	"github.com/rajiviyer/medical-doc-extractor/internal/llm"
	"github.com/rajiviyer/medical-doc-extractor/internal/repository"
	"github.com/rajiviyer/medical-doc-extractor/internal/rules"
	"github.com/rajiviyer/medical-doc-extractor/internal/validation"
)

// Processor coordinates text extract, LLM parse, and rule validation.
type Processor struct {
	Logger *slog.Logger
	Docs   repository.DocumentRepository
	Runs   repository.RunRepository
	Text   extract.TextExtractor
	Fields llm.FieldExtractor
	Engine *rules.Engine

	// ModelName is recorded on each run for traceability.
	ModelName string
}

func NewProcessor(
	logger *slog.Logger,
	docs repository.DocumentRepository,
	runs repository.RunRepository,
	text extract.TextExtractor,
	fields llm.FieldExtractor,
	engine *rules.Engine,
	modelName string,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:    logger,
		Docs:      docs,
		Runs:      runs,
		Text:      text,
		Fields:    fields,
		Engine:    engine,
		ModelName: modelName,
	}
}

// Result carries everything one run produced.
type Result struct {
	RunID            uuid.UUID                                   `json:"run_id"`
	DocumentID       uuid.UUID                                   `json:"document_id"`
	Fields           rules.PolicyData                            `json:"fields"`
	FieldResults     map[string]validation.FieldValidationResult `json:"field_results"`
	CrossFieldIssues []string                                    `json:"cross_field_issues,omitempty"`
	Report           rules.ValidationReport                      `json:"report"`
}

// ProcessDocument runs the full pipeline for an ingested document and
// persists every stage transition. The claim data comes from the caller:
// claims arrive through the API, documents through ingest.
func (p *Processor) ProcessDocument(ctx context.Context, documentID uuid.UUID, claim rules.ClaimData) (Result, error) {
	var out Result
	out.DocumentID = documentID

	doc, err := p.Docs.GetByID(ctx, documentID)
	if err != nil {
		return out, common.WrapError(err, "load document")
	}

	run, err := p.Runs.Start(ctx, documentID, string(constants.JobStatusRunning))
	if err != nil {
		return out, fmt.Errorf("start run: %w", err)
	}
	out.RunID = run.ID

	// Stage 1: file -> text.
	textRes, err := p.Text.Extract(ctx, doc.SourcePath)
	if err != nil {
		p.Logger.Error("pipeline.text.failed", "run_id", run.ID, "document_id", documentID, "err", err)
		_ = p.Runs.FinishFailure(ctx, run.ID, fmt.Sprintf("text extraction: %v", err))
		return out, fmt.Errorf("text extraction: %w: %w", common.ErrExtraction, err)
	}
	p.Logger.Info("pipeline.text.ok",
		"run_id", run.ID,
		"document_id", documentID,
		"method", textRes.Method,
		"pages", textRes.Pages,
		"confidence", textRes.Confidence,
	)

	// Refine the filename-only classification now that content exists.
	if cls := classify.Classify(doc.Filename, textRes.Text, nil); classify.Usable(cls) && string(cls.DocType) != doc.DocType {
		if err := p.Docs.SetClassification(ctx, documentID, string(cls.DocType), string(cls.Category)); err != nil {
			p.Logger.Warn("pipeline.classify.update_failed", "run_id", run.ID, "err", err)
		} else {
			p.Logger.Info("pipeline.classify.refined", "run_id", run.ID, "doc_type", cls.DocType)
			doc.DocType = string(cls.DocType)
		}
	}

	// Stage 2: text -> fields.
	fields, rawJSON, err := p.Fields.ExtractFields(ctx, llm.ExtractRequest{
		DocText:        textRes.Text,
		FilenameHint:   doc.Filename,
		TextConfidence: textRes.Confidence,
		FilePath:       doc.SourcePath,
		Doc:            llm.DocContext{DocType: doc.DocType},
	})
	if err != nil {
		p.Logger.Error("pipeline.fields.failed", "run_id", run.ID, "err", err)
		_ = p.Runs.FinishFailure(ctx, run.ID, fmt.Sprintf("field extraction: %v", err))
		return out, fmt.Errorf("field extraction: %w: %w", common.ErrExtraction, err)
	}
	if err := p.Runs.FinishExtraction(ctx, run.ID, p.ModelName, rawJSON, string(constants.JobStatusLLMOK)); err != nil {
		return out, err
	}

	// Stage 3: validate and evaluate.
	out.Fields = rules.PolicyData(fields)
	out.FieldResults, out.CrossFieldIssues, out.Report = p.Validate(out.Fields, claim)

	reportJSON, err := json.Marshal(out.Report)
	if err != nil {
		_ = p.Runs.FinishFailure(ctx, run.ID, fmt.Sprintf("encode report: %v", err))
		return out, fmt.Errorf("encode report: %w", err)
	}
	if err := p.Runs.FinishValidation(ctx, run.ID, reportJSON,
		string(out.Report.RiskLevel), string(out.Report.Status)); err != nil {
		return out, err
	}

	p.Logger.Info("pipeline.validate.ok",
		"run_id", run.ID,
		"document_id", documentID,
		"overall_valid", out.Report.OverallValid,
		"risk_level", out.Report.RiskLevel,
		"claim_status", out.Report.Status,
		"total_deductions", out.Report.TotalDeductions,
	)
	return out, nil
}

// Validate runs the data-only stages: field validation, cross-field checks,
// and rule evaluation. It never touches storage, so the API can serve
// already-extracted field maps without a stored document.
func (p *Processor) Validate(policy rules.PolicyData, claim rules.ClaimData) (map[string]validation.FieldValidationResult, []string, rules.ValidationReport) {
	specs := validation.DefaultFieldSpecs()
	fieldResults := validation.ValidateAll(policy, specs)
	crossIssues := validation.CheckCrossField(policy)

	results := p.Engine.Evaluate(policy, claim)
	report := rules.Aggregate(policy, results)
	return fieldResults, crossIssues, report
}
