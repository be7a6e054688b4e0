// Package classify routes incoming documents to the right extraction
// pipeline. Classification blends three cheap signals (filename patterns,
// content keywords, caller-supplied metadata) before any LLM call is spent
// on the document.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rajiviyer/medical-doc-extractor/constants"
)

// Result is the outcome of classifying one document.
type Result struct {
	DocType         constants.DocType     `json:"document_type"`
	Category        constants.DocCategory `json:"category"`
	ConfidenceScore float64               `json:"confidence_score"`
	Method          string                `json:"extraction_method"`
	PolicyNumber    string                `json:"policy_number,omitempty"`
	PolicyVersion   string                `json:"policy_version,omitempty"`
	Recommendations []string              `json:"recommendations,omitempty"`
}

// contentKeywords score a document type by substring hits in the text.
var contentKeywords = map[constants.DocType][]string{
	constants.HealthInsurance: {
		"mediclaim", "health insurance", "health policy", "medical insurance",
		"healthcare", "hospitalization", "critical illness", "disease",
		"room rent", "icu", "co-payment", "sum assured",
	},
	constants.LifeInsurance: {
		"life insurance", "life policy", "term life", "whole life",
		"endowment", "death benefit", "maturity benefit", "premium",
	},
	constants.MasterPolicy: {
		"master policy", "master document", "base policy", "policy document",
		"terms and conditions", "policy wordings",
	},
	constants.PolicySchedule: {
		"policy schedule", "schedule", "individual policy", "member details",
		"insured details", "coverage details",
	},
	constants.Endorsement: {
		"endorsement", "rider", "add-on", "modification", "amendment",
		"change request", "policy change",
	},
	constants.ClaimDocument: {
		"claim", "claim form", "claim document", "claim request",
		"hospitalization", "discharge summary", "medical certificate",
	},
	constants.MedicalReport: {
		"medical report", "diagnosis", "prescription", "lab report",
		"test results", "doctor certificate", "medical certificate",
	},
	constants.HospitalBill: {
		"hospital bill", "medical bill", "invoice", "charges",
		"itemized bill", "cost breakdown", "payment receipt",
	},
}

// filenamePatterns score a document type by regexp hits on the filename.
var filenamePatterns = map[constants.DocType][]*regexp.Regexp{
	constants.HealthInsurance: compilePatterns(
		`mediclaim`, `health.*policy`, `health.*insurance`, `medical.*policy`, `healthcare.*policy`,
	),
	constants.LifeInsurance: compilePatterns(
		`life.*policy`, `life.*insurance`, `term.*life`, `whole.*life`, `endowment.*policy`,
	),
	constants.MasterPolicy: compilePatterns(
		`master.*policy`, `policy.*document`, `terms.*conditions`, `policy.*wordings`, `base.*policy`,
	),
	constants.PolicySchedule: compilePatterns(
		`policy.*schedule`, `schedule.*policy`, `individual.*policy`, `member.*details`, `insured.*details`,
	),
	constants.Endorsement: compilePatterns(
		`endorsement`, `rider`, `add.*on`, `modification`, `amendment`, `policy.*change`,
	),
	constants.ClaimDocument: compilePatterns(
		`claim.*form`, `claim.*document`, `claim.*request`, `hospitalization.*claim`, `discharge.*summary`,
	),
	constants.MedicalReport: compilePatterns(
		`medical.*report`, `diagnosis`, `prescription`, `lab.*report`, `test.*results`, `doctor.*certificate`,
	),
	constants.HospitalBill: compilePatterns(
		`hospital.*bill`, `medical.*bill`, `invoice`, `itemized.*bill`, `cost.*breakdown`, `payment.*receipt`,
	),
}

var policyNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)POL[-\s]?(\d{4}[-\s]?\d{6})`),
	regexp.MustCompile(`(?i)Policy[-\s]?No[.:\s]?(\d{4}[-\s]?\d{6})`),
	regexp.MustCompile(`(?i)Policy[-\s]?Number[.:\s]?(\d{4}[-\s]?\d{6})`),
	regexp.MustCompile(`(\d{4}[-\s]?\d{6})`),
	regexp.MustCompile(`([A-Z]{2,4}\d{6,10})`),
}

var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)v[.\s]?(\d+\.\d+)`),
	regexp.MustCompile(`(?i)version[.\s]?(\d+\.\d+)`),
	regexp.MustCompile(`(?i)ver[.\s]?(\d+\.\d+)`),
	regexp.MustCompile(`(\d{4}[-\s]?\d{2}[-\s]?\d{2})`),
	regexp.MustCompile(`(?i)rev[.\s]?(\d+)`),
	regexp.MustCompile(`(?i)revision[.\s]?(\d+)`),
}

func compilePatterns(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// docTypeOrder fixes tie-breaking: earlier entries win equal scores.
var docTypeOrder = []constants.DocType{
	constants.HealthInsurance,
	constants.LifeInsurance,
	constants.MasterPolicy,
	constants.PolicySchedule,
	constants.Endorsement,
	constants.ClaimDocument,
	constants.MedicalReport,
	constants.HospitalBill,
}

// Classify blends filename, content, and metadata signals into one routing
// decision. Any argument may be empty; with no signal at all the document
// lands in Other/administrative at zero confidence.
func Classify(filename, content string, metadata map[string]string) Result {
	var votes []constants.DocType

	if t, ok := classifyByFilename(filename); ok {
		votes = append(votes, t)
	}
	if t, ok := classifyByContent(content); ok {
		votes = append(votes, t)
	}
	if t, ok := classifyByMetadata(metadata); ok {
		votes = append(votes, t)
	}

	if len(votes) == 0 {
		return Result{
			DocType:         constants.OtherDocument,
			Category:        constants.CategoryAdministrative,
			Method:          "fallback",
			Recommendations: []string{"Low confidence classification - manual review recommended"},
		}
	}

	best, agreement := majority(votes)
	r := Result{
		DocType:         best,
		Category:        constants.CategoryOf(best),
		ConfidenceScore: agreement,
		Method:          "combined_analysis",
		PolicyNumber:    firstMatch(policyNumberPatterns, filename, content),
		PolicyVersion:   firstMatch(versionPatterns, filename, content),
	}
	r.Recommendations = recommendations(r)
	return r
}

func classifyByFilename(filename string) (constants.DocType, bool) {
	if filename == "" {
		return constants.OtherDocument, false
	}
	lower := strings.ToLower(filename)

	var best constants.DocType
	bestScore := 0
	for _, t := range docTypeOrder {
		score := 0
		for _, pattern := range filenamePatterns[t] {
			if pattern.MatchString(lower) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = t, score
		}
	}
	return best, bestScore > 0
}

func classifyByContent(content string) (constants.DocType, bool) {
	if content == "" {
		return constants.OtherDocument, false
	}
	lower := strings.ToLower(content)

	var best constants.DocType
	bestScore := 0
	for _, t := range docTypeOrder {
		score := 0
		for _, keyword := range contentKeywords[t] {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = t, score
		}
	}
	return best, bestScore > 0
}

// classifyByMetadata honors explicit hints from the uploader. A named
// document type beats a policy-type hint.
func classifyByMetadata(metadata map[string]string) (constants.DocType, bool) {
	if metadata == nil {
		return constants.OtherDocument, false
	}

	if v, ok := metadata["document_type"]; ok {
		lower := strings.ToLower(v)
		switch {
		case strings.Contains(lower, "master"):
			return constants.MasterPolicy, true
		case strings.Contains(lower, "schedule"):
			return constants.PolicySchedule, true
		case strings.Contains(lower, "endorsement"):
			return constants.Endorsement, true
		}
		if t, ok := constants.CanonicalizeDocType(v); ok {
			return t, true
		}
	}

	if v, ok := metadata["policy_type"]; ok {
		lower := strings.ToLower(v)
		switch {
		case strings.Contains(lower, "health"), strings.Contains(lower, "medical"):
			return constants.HealthInsurance, true
		case strings.Contains(lower, "life"):
			return constants.LifeInsurance, true
		}
	}

	return constants.OtherDocument, false
}

// majority returns the most voted type and the agreement ratio. Ties go to
// the earliest vote, which keeps filename < content < metadata precedence
// stable.
func majority(votes []constants.DocType) (constants.DocType, float64) {
	counts := make(map[constants.DocType]int, len(votes))
	for _, v := range votes {
		counts[v]++
	}
	best := votes[0]
	for _, v := range votes {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, float64(counts[best]) / float64(len(votes))
}

func firstMatch(patterns []*regexp.Regexp, filename, content string) string {
	for _, source := range []string{filename, content} {
		if source == "" {
			continue
		}
		for _, p := range patterns {
			if m := p.FindStringSubmatch(source); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

func recommendations(r Result) []string {
	recs := make([]string, 0, 2)
	switch {
	case r.ConfidenceScore < 0.5:
		recs = append(recs, "Low confidence classification - manual review recommended")
	case r.ConfidenceScore < 0.8:
		recs = append(recs, "Medium confidence classification - consider additional validation")
	default:
		recs = append(recs, "High confidence classification - proceed with processing")
	}

	switch r.DocType {
	case constants.HealthInsurance, constants.MasterPolicy:
		recs = append(recs, "Use health insurance extraction pipeline")
	case constants.LifeInsurance:
		recs = append(recs, "Use life insurance extraction pipeline")
	case constants.ClaimDocument:
		recs = append(recs, "Use claim processing pipeline")
	case constants.MedicalReport:
		recs = append(recs, "Use medical document processing pipeline")
	}
	return recs
}

// Processor names the downstream pipeline for a document type.
func Processor(t constants.DocType) string {
	switch t {
	case constants.HealthInsurance:
		return "health_policy_processor"
	case constants.LifeInsurance:
		return "life_policy_processor"
	case constants.MasterPolicy:
		return "master_policy_processor"
	case constants.PolicySchedule:
		return "policy_schedule_processor"
	case constants.Endorsement:
		return "endorsement_processor"
	case constants.ClaimDocument:
		return "claim_processor"
	case constants.MedicalReport:
		return "medical_processor"
	case constants.HospitalBill:
		return "bill_processor"
	default:
		return "general_processor"
	}
}

// Usable reports whether a classification is trustworthy enough for
// automatic routing; anything else goes to manual review.
func Usable(r Result) bool {
	if r.ConfidenceScore < 0.3 {
		return false
	}
	if r.DocType == constants.OtherDocument {
		return false
	}
	return r.Category != constants.CategoryAdministrative
}

// String implements a compact log form.
func (r Result) String() string {
	return fmt.Sprintf("%s/%s (%.2f via %s)", r.DocType, r.Category, r.ConfidenceScore, r.Method)
}
