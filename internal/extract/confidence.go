package extract

import (
	"regexp"
	"strings"
)

var (
	reDateish   = regexp.MustCompile(`\b\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}\b|\b\d{4}-\d{2}-\d{2}\b`)
	rePolicyish = regexp.MustCompile(`\b(policy|sum (assured|insured)|premium|capping|co-?pay(ment)?|waiting period|icu|room rent)\b`)
	reAmountish = regexp.MustCompile(`[₹$]\s?\d|\b\d{1,3}(,\d{2,3})+\b|\b\d+\s?%`)
)

// heuristicConfidence scores decoded text on whether it looks like an
// insurance document at all: date-ish tokens, policy vocabulary, and
// amount/percentage artifacts each add weight.
func heuristicConfidence(txt string) float32 {
	lower := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDateish.MatchString(lower) {
		score += 0.2
	}
	if rePolicyish.MatchString(lower) {
		score += 0.25
	}
	if reAmountish.MatchString(lower) {
		score += 0.15
	}
	if len(txt) > 200 { // enough content
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// normalizeText collapses OCR line noise: CRLF, repeated blank lines, and
// trailing whitespace per line.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, ln := range lines {
		ln = strings.TrimRight(ln, " \t")
		if ln == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, ln)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
