package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajiviyer/medical-doc-extractor/internal/common"
	"github.com/rajiviyer/medical-doc-extractor/internal/extract"
	"github.com/rajiviyer/medical-doc-extractor/internal/llm"
	"github.com/rajiviyer/medical-doc-extractor/internal/repository"
	"github.com/rajiviyer/medical-doc-extractor/internal/rules"
)

type stubText struct {
	res extract.TextExtractionResult
	err error
}

func (s stubText) Extract(context.Context, string) (extract.TextExtractionResult, error) {
	return s.res, s.err
}

type stubFields struct {
	fields llm.PolicyFields
	err    error
}

func (s stubFields) ExtractFields(context.Context, llm.ExtractRequest) (llm.PolicyFields, []byte, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	raw, _ := json.Marshal(s.fields)
	return s.fields, raw, nil
}

func seedDocument(t *testing.T, store *repository.SQLiteStore) *repository.Document {
	t.Helper()
	hash := sha256.Sum256([]byte("policy.pdf"))
	doc, err := store.Documents().Create(context.Background(), &repository.Document{
		SourcePath:  "/docs/policy.pdf",
		Filename:    "mediclaim_policy.pdf",
		FileExt:     "pdf",
		FileSize:    2048,
		ContentHash: hash[:],
		DocType:     "Other",
		Category:    "administrative",
		UploadedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	return doc
}

func newTestProcessor(t *testing.T, store *repository.SQLiteStore, text extract.TextExtractor, fields llm.FieldExtractor) *Processor {
	t.Helper()
	engine, err := rules.NewEngine(rules.Config{
		DiseaseWaitingDays:   map[string]int{"cardiac": 180},
		DaycareProcedures:    []string{"cataract"},
		NonPayableItems:      []string{"food"},
		MaternityConditions:  []string{"maternity"},
		InitialWaitingDays:   30,
		MaternityWaitingDays: 270,
		Today:                time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return NewProcessor(nil, store.Documents(), store.Runs(), text, fields, engine, "test-model")
}

func TestProcessDocument(t *testing.T) {
	store, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	defer store.Close()
	doc := seedDocument(t, store)

	text := stubText{res: extract.TextExtractionResult{
		Text:       "Policy Schedule. Sum Assured ₹5,00,000. Health insurance hospitalization cover.",
		Pages:      1,
		SourceType: "PDF",
		Method:     "pdf-text",
		Confidence: 0.95,
	}}
	fields := stubFields{fields: llm.PolicyFields{
		"base_sum_assured": "500000",
		"policy_status":    "active",
		"inception_date":   "01/01/2024",
	}}

	proc := newTestProcessor(t, store, text, fields)
	out, err := proc.ProcessDocument(context.Background(), doc.ID,
		rules.ClaimData{AdmissionDate: "15/07/2025", Condition: "fever"})
	require.NoError(t, err)

	assert.True(t, out.Report.OverallValid)
	assert.Len(t, out.Report.RuleResults, 11)

	run, err := store.Runs().GetByID(context.Background(), out.RunID)
	require.NoError(t, err)
	assert.Equal(t, "VALIDATED", run.Status)
	assert.Equal(t, "test-model", run.ModelName)
	assert.Equal(t, "Low", run.RiskLevel)
	assert.Equal(t, "CLEARED", run.ClaimStatus)
	assert.NotEmpty(t, run.ReportJSON)

	// Content-based classification should refine the filename-only guess.
	refreshed, err := store.Documents().GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "HealthInsurance", refreshed.DocType)
}

func TestProcessDocumentTextFailure(t *testing.T) {
	store, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	defer store.Close()
	doc := seedDocument(t, store)

	proc := newTestProcessor(t, store, stubText{err: errors.New("pdftotext not found")}, stubFields{})
	out, err := proc.ProcessDocument(context.Background(), doc.ID,
		rules.ClaimData{AdmissionDate: "15/07/2025"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)

	run, err := store.Runs().GetByID(context.Background(), out.RunID)
	require.NoError(t, err)
	assert.Equal(t, "FAILED", run.Status)
	assert.Contains(t, run.ErrorMessage, "text extraction")
}

func TestProcessDocumentFieldFailure(t *testing.T) {
	store, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	defer store.Close()
	doc := seedDocument(t, store)

	text := stubText{res: extract.TextExtractionResult{Text: "some text", Confidence: 0.9}}
	proc := newTestProcessor(t, store, text, stubFields{err: errors.New("llm timeout")})

	out, err := proc.ProcessDocument(context.Background(), doc.ID,
		rules.ClaimData{AdmissionDate: "15/07/2025"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)

	run, err := store.Runs().GetByID(context.Background(), out.RunID)
	require.NoError(t, err)
	assert.Equal(t, "FAILED", run.Status)
	assert.Contains(t, run.ErrorMessage, "field extraction")
}

func TestProcessDocumentUnknownID(t *testing.T) {
	store, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	defer store.Close()

	proc := newTestProcessor(t, store, stubText{}, stubFields{})
	_, err = proc.ProcessDocument(context.Background(), uuid.New(),
		rules.ClaimData{AdmissionDate: "15/07/2025"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestValidateIsPure(t *testing.T) {
	store, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	defer store.Close()

	proc := newTestProcessor(t, store, stubText{}, stubFields{})
	policy := rules.PolicyData{
		"base_sum_assured":  "500000",
		"policy_status":     "active",
		"inception_date":    "01/01/2024",
		"room_rent_capping": "2%",
	}
	claim := rules.ClaimData{
		AdmissionDate: "15/07/2025",
		Condition:     "fever",
		HospitalBill:  map[string]float64{"room_rent": 12000},
	}

	fieldResults, _, report := proc.Validate(policy, claim)
	assert.NotEmpty(t, fieldResults)
	assert.Len(t, report.RuleResults, 11)
	assert.Greater(t, report.TotalDeductions, 0.0)
}
