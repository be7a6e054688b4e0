// Package llm turns extracted document text into structured policy fields
// through a chat-completions provider constrained by a JSON schema. The
// provider client lives in a subpackage; this package owns the contract,
// the schema, the prompts, and the response sanitization.
package llm

import "context"

// PolicyFields is the normalized shape we want from the LLM: a sparse map of
// recognized field names to raw string values. Fields the document does not
// mention are absent, never null or empty.
type PolicyFields map[string]string

// DocContext carries what classification learned about the document, so the
// prompt can anchor the model.
type DocContext struct {
	DocType      string `json:"doc_type,omitempty"`
	PolicyNumber string `json:"policy_number,omitempty"`
	Insurer      string `json:"insurer,omitempty"`
}

type ExtractRequest struct {
	DocText      string
	FilenameHint string
	FolderHint   string

	// TextConfidence is the upstream text extraction confidence (0..1);
	// low values get flagged in logs before spending the LLM call.
	TextConfidence float32
	FilePath       string

	Doc DocContext
}

// FieldExtractor is the interface the pipeline depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (PolicyFields, []byte /*rawJSON*/, error)
}
