package llm

import (
	"sort"
	"strings"

	"github.com/rajiviyer/medical-doc-extractor/internal/validation"
)

// BuildSystemPrompt composes the system message: the extractor persona, the
// field glossary from the registry, and strict-but-practical formatting
// rules.
func BuildSystemPrompt(req ExtractRequest, specs map[string]validation.FieldSpec) string {
	var ctxBits []string
	if d := strings.TrimSpace(req.Doc.DocType); d != "" {
		ctxBits = append(ctxBits, "Document type: "+d+".")
	}
	if n := strings.TrimSpace(req.Doc.PolicyNumber); n != "" {
		ctxBits = append(ctxBits, "Policy number: "+n+".")
	}
	if i := strings.TrimSpace(req.Doc.Insurer); i != "" {
		ctxBits = append(ctxBits, "Insurer: "+i+".")
	}

	parts := []string{
		"You are a health insurance policy parser. Return ONLY JSON that matches the provided JSON Schema.",
		"Extract the policy limits, cappings, waiting periods, and dates exactly as written in the document.",
		"Keep values verbatim: '2% of SI', 'At Actuals', '₹5,00,000' are all valid values.",
		"Dates stay in the document's own format; do not reformat them.",
		"Field glossary: " + buildFieldGlossary(specs),
		"Never output null. If a field is not present in the document, omit it entirely.",
		"Never guess or compute values that are not stated in the document.",
	}
	if len(ctxBits) > 0 {
		parts = append(parts, "Document context: "+strings.Join(ctxBits, " "))
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages filename/folder hints with the extracted text,
// truncated so a scanned master policy doesn't blow the context window.
func BuildUserPrompt(req ExtractRequest) string {
	const maxText = 6000

	var b strings.Builder
	if filename := strings.TrimSpace(req.FilenameHint); filename != "" {
		b.WriteString("Filename: ")
		b.WriteString(filename)
		b.WriteString("\n")
	}
	if folder := strings.TrimSpace(req.FolderHint); folder != "" {
		b.WriteString("Folder path: ")
		b.WriteString(folder)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(req.DocText)
	b.WriteString("\nDocument text (first ~6k chars):\n")
	if len(text) > maxText {
		b.WriteString(text[:maxText])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}

// buildFieldGlossary lists each registry field with its description so the
// model maps document wording onto canonical names.
func buildFieldGlossary(specs map[string]validation.FieldSpec) string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if d := specs[name].Description; d != "" {
			parts = append(parts, name+": "+d)
		}
	}
	return strings.Join(parts, " | ")
}
