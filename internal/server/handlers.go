package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rajiviyer/medical-doc-extractor/internal/classify"
	"github.com/rajiviyer/medical-doc-extractor/internal/common"
	"github.com/rajiviyer/medical-doc-extractor/internal/export"
	"github.com/rajiviyer/medical-doc-extractor/internal/repository"
	"github.com/rajiviyer/medical-doc-extractor/internal/rules"
	"github.com/rajiviyer/medical-doc-extractor/internal/validation"
)

// validateRequest is the data-only validation input: an already-extracted
// policy field map plus the claim under adjudication.
type validateRequest struct {
	Policy rules.PolicyData `json:"policy"`
	Claim  rules.ClaimData  `json:"claim"`
}

type validateResponse struct {
	FieldResults     map[string]validation.FieldValidationResult `json:"field_results"`
	CrossFieldIssues []string                                    `json:"cross_field_issues,omitempty"`
	Report           rules.ValidationReport                      `json:"report"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}
	if len(req.Policy) == 0 {
		writeError(w, http.StatusBadRequest, "policy is required")
		return
	}
	if req.Claim.AdmissionDate == "" {
		writeError(w, http.StatusBadRequest, "claim.admission_date is required")
		return
	}

	fieldResults, crossIssues, report := s.processor.Validate(req.Policy, req.Claim)
	validationsTotal.WithLabelValues(string(report.Status)).Inc()

	writeJSON(w, http.StatusOK, validateResponse{
		FieldResults:     fieldResults,
		CrossFieldIssues: crossIssues,
		Report:           report,
	})
}

type classifyRequest struct {
	Filename string            `json:"filename"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}
	if req.Filename == "" && req.Content == "" {
		writeError(w, http.StatusBadRequest, "filename or content is required")
		return
	}
	writeJSON(w, http.StatusOK, classify.Classify(req.Filename, req.Content, req.Metadata))
}

type ingestRequest struct {
	Path      string `json:"path"`
	Directory bool   `json:"directory,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	if req.Directory {
		results, stats, err := s.ingestor.IngestDirectory(r.Context(), req.Path, true)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, res := range results {
			if res.Err == "" {
				ingestedDocs.WithLabelValues(fmt.Sprintf("%t", res.Deduplicated)).Inc()
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results, "stats": stats})
		return
	}

	res, err := s.ingestor.IngestPath(r.Context(), req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ingestedDocs.WithLabelValues(fmt.Sprintf("%t", res.Deduplicated)).Inc()
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "documentID")
	if !ok {
		return
	}
	doc, err := s.docs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, documentView(doc))
}

type processRequest struct {
	Claim rules.ClaimData `json:"claim"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "documentID")
	if !ok {
		return
	}
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}
	if req.Claim.AdmissionDate == "" {
		writeError(w, http.StatusBadRequest, "claim.admission_date is required")
		return
	}

	out, err := s.processor.ProcessDocument(r.Context(), id, req.Claim)
	if err != nil {
		pipelineRuns.WithLabelValues("failed").Inc()
		s.logger.Error("http.process_failed",
			"req_id", common.RequestIDFromContext(r.Context()),
			"document_id", id,
			"err", err,
		)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "document not found")
		case errors.Is(err, common.ErrExtraction):
			// The failing collaborator is external (pdftotext, the LLM).
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	pipelineRuns.WithLabelValues("ok").Inc()
	validationsTotal.WithLabelValues(string(out.Report.Status)).Inc()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "documentID")
	if !ok {
		return
	}
	runs, err := s.runs.ListByDocument(r.Context(), id, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]map[string]any, 0, len(runs))
	for _, run := range runs {
		out = append(out, runView(run))
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": out})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "runID")
	if !ok {
		return
	}
	run, err := s.runs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	view := runView(run)
	if len(run.ReportJSON) > 0 {
		view["report"] = json.RawMessage(run.ReportJSON)
	}
	if len(run.FieldsJSON) > 0 {
		view["fields"] = json.RawMessage(run.FieldsJSON)
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleExportRun(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "runID")
	if !ok {
		return
	}
	run, err := s.runs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(run.ReportJSON) == 0 {
		writeError(w, http.StatusConflict, "run has no validation report yet")
		return
	}

	var report rules.ValidationReport
	if err := json.Unmarshal(run.ReportJSON, &report); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("decode stored report: %v", err))
		return
	}

	docName := run.DocumentID.String()
	if doc, err := s.docs.GetByID(r.Context(), run.DocumentID); err == nil {
		docName = doc.Filename
	}

	xlsx, err := s.exporter.ExportReportsXLSX([]export.ReportRow{{
		DocumentName: docName,
		RunID:        run.ID.String(),
		Report:       report,
	}})
	if err != nil {
		s.logger.Error("export.xlsx.failed", "run_id", run.ID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "validation-"+run.ID.String()+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(xlsx)
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func documentView(doc *repository.Document) map[string]any {
	return map[string]any{
		"id":          doc.ID,
		"source_path": doc.SourcePath,
		"filename":    doc.Filename,
		"file_ext":    doc.FileExt,
		"file_size":   doc.FileSize,
		"doc_type":    doc.DocType,
		"category":    doc.Category,
		"uploaded_at": doc.UploadedAt.Format(time.RFC3339),
	}
}

func runView(run *repository.ValidationRun) map[string]any {
	view := map[string]any{
		"id":           run.ID,
		"document_id":  run.DocumentID,
		"status":       run.Status,
		"model_name":   run.ModelName,
		"risk_level":   run.RiskLevel,
		"claim_status": run.ClaimStatus,
		"started_at":   run.StartedAt.Format(time.RFC3339),
	}
	if run.ErrorMessage != "" {
		view["error_message"] = run.ErrorMessage
	}
	if !run.FinishedAt.IsZero() {
		view["finished_at"] = run.FinishedAt.Format(time.RFC3339)
	}
	return view
}
