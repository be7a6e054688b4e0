package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajiviyer/medical-doc-extractor/internal/extract"
	"github.com/rajiviyer/medical-doc-extractor/internal/llm"
	"github.com/rajiviyer/medical-doc-extractor/internal/pipeline"
	"github.com/rajiviyer/medical-doc-extractor/internal/repository"
	"github.com/rajiviyer/medical-doc-extractor/internal/rules"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine, err := rules.NewEngine(rules.DefaultConfig())
	require.NoError(t, err)
	proc := pipeline.NewProcessor(nil, nil, nil, nil, nil, engine, "test-model")
	return New(nil, proc, nil, nil, nil, nil)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body, err := json.Marshal(validateRequest{
		Policy: rules.PolicyData{
			"base_sum_assured": "500000",
			"policy_status":    "active",
			"inception_date":   "01/01/2020",
		},
		Claim: rules.ClaimData{
			AdmissionDate: "15/07/2025",
			Condition:     "fever",
		},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/validate", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Report.OverallValid)
	assert.Len(t, resp.Report.RuleResults, 11)
	assert.NotEmpty(t, resp.FieldResults)
}

func TestValidateEndpointRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", "{"},
		{"missing policy", `{"claim":{"admission_date":"15/07/2025"}}`},
		{"missing admission date", `{"policy":{"base_sum_assured":"500000"},"claim":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/validate", bytes.NewReader([]byte(tc.body))))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestClassifyEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body := `{"filename":"mediclaim_policy_2024.pdf"}`
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/classify", bytes.NewReader([]byte(body))))
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		DocType string `json:"document_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.DocType)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "caller-supplied-id")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied-id", rec.Header().Get("X-Request-ID"))
}

type failingText struct{}

func (failingText) Extract(context.Context, string) (extract.TextExtractionResult, error) {
	return extract.TextExtractionResult{}, errors.New("pdftotext not found")
}

type noopFields struct{}

func (noopFields) ExtractFields(context.Context, llm.ExtractRequest) (llm.PolicyFields, []byte, error) {
	return llm.PolicyFields{}, []byte("{}"), nil
}

func TestProcessMapsExtractionFailureToBadGateway(t *testing.T) {
	store, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hash := sha256.Sum256([]byte("scan.pdf"))
	doc, err := store.Documents().Create(context.Background(), &repository.Document{
		SourcePath:  "/docs/scan.pdf",
		Filename:    "scan.pdf",
		FileExt:     "pdf",
		FileSize:    100,
		ContentHash: hash[:],
		DocType:     "Other",
		Category:    "administrative",
		UploadedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	engine, err := rules.NewEngine(rules.DefaultConfig())
	require.NoError(t, err)
	proc := pipeline.NewProcessor(nil, store.Documents(), store.Runs(), failingText{}, noopFields{}, engine, "test-model")
	srv := New(nil, proc, nil, store.Documents(), store.Runs(), nil)

	body := []byte(`{"claim":{"admission_date":"15/07/2025"}}`)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/v1/documents/"+doc.ID.String()+"/process", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "text extraction")
}

func TestDocumentRoutesValidateUUIDs(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/documents/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs/also-bad", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
