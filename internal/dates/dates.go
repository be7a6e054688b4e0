// Package dates normalizes the date strings found in policy documents.
// Extractions carry dates in whatever shape the source document used:
// "15/07/2025", "15-7-25", "2025-07-15", "7.5.25". Everything is reduced
// to a canonical calendar date under a single, configured day/month
// convention so downstream rule arithmetic stays deterministic.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Convention fixes how an ambiguous numeric date is read.
type Convention int

const (
	// DayFirst reads 07/05/25 as 7 May 2025. This is the system-wide
	// default; the source documents follow Indian DD/MM convention.
	DayFirst Convention = iota
	MonthFirst
)

// Two-digit years expand around a fixed pivot so results never depend on
// platform defaults: 00-49 -> 2000-2049, 50-99 -> 1950-1999.
const twoDigitYearPivot = 50

var separators = []string{"/", "-", "."}

// candidatePatterns lists the accepted shapes in priority order, used for
// error reporting. ISO comes first, then 4-digit-year forms, then 2-digit.
var candidatePatterns = []string{
	"YYYY-MM-DD",
	"D/M/YYYY", "D-M-YYYY", "D.M.YYYY",
	"D/M/YY", "D-M-YY", "D.M.YY",
}

// ParseError reports an input that matched no candidate format or named an
// impossible calendar date.
type ParseError struct {
	Input     string
	Attempted []string
	Reason    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse date %q: %s (tried %s)", e.Input, e.Reason, strings.Join(e.Attempted, ", "))
}

// Result is a normalized date plus parse metadata.
type Result struct {
	Date time.Time
	// Ambiguous is set when both day-first and month-first readings are
	// calendar-valid and name different dates. The configured convention
	// still decides Date; callers may want to flag the input for review.
	Ambiguous bool
}

// Parse normalizes a date string under the day-first convention.
func Parse(s string) (time.Time, error) {
	r, err := ParseWith(s, DayFirst)
	if err != nil {
		return time.Time{}, err
	}
	return r.Date, nil
}

// ParseWith normalizes a date string under an explicit convention.
func ParseWith(s string, conv Convention) (Result, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Result{}, &ParseError{Input: s, Attempted: candidatePatterns, Reason: "empty string"}
	}

	sep := detectSeparator(trimmed)
	if sep == "" {
		return Result{}, &ParseError{Input: s, Attempted: candidatePatterns, Reason: "no recognized separator"}
	}

	parts := strings.Split(trimmed, sep)
	if len(parts) != 3 {
		return Result{}, &ParseError{Input: s, Attempted: candidatePatterns, Reason: "expected three date components"}
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return Result{}, &ParseError{Input: s, Attempted: candidatePatterns, Reason: "non-numeric component"}
		}
		nums[i] = n
	}

	// ISO form: a 4-digit leading year is unambiguous regardless of
	// convention (YYYY-MM-DD, also tolerated with / and .).
	if len(parts[0]) == 4 {
		d, ok := makeDate(nums[0], nums[1], nums[2])
		if !ok {
			return Result{}, &ParseError{Input: s, Attempted: candidatePatterns, Reason: "impossible calendar date"}
		}
		return Result{Date: d}, nil
	}

	if len(parts[2]) != 4 && len(parts[2]) != 2 {
		return Result{}, &ParseError{Input: s, Attempted: candidatePatterns, Reason: "year must be 2 or 4 digits"}
	}
	if len(parts[0]) > 2 || len(parts[1]) > 2 {
		return Result{}, &ParseError{Input: s, Attempted: candidatePatterns, Reason: "day and month must be 1-2 digits"}
	}

	year := nums[2]
	if len(parts[2]) == 2 {
		if year < twoDigitYearPivot {
			year += 2000
		} else {
			year += 1900
		}
	}

	first, second := nums[0], nums[1]
	day, month := first, second
	if conv == MonthFirst {
		day, month = second, first
	}

	date, ok := makeDate(year, month, day)
	if !ok {
		return Result{}, &ParseError{Input: s, Attempted: candidatePatterns, Reason: "impossible calendar date"}
	}

	// The alternate reading is only a concern when it is also valid and
	// names a different day.
	ambiguous := false
	if first != second {
		if _, altOK := makeDate(year, day, month); altOK {
			ambiguous = true
		}
	}

	return Result{Date: date, Ambiguous: ambiguous}, nil
}

// DaysBetween returns the whole days from a to b (negative if b precedes a).
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func detectSeparator(s string) string {
	for _, sep := range separators {
		if strings.Count(s, sep) == 2 {
			return sep
		}
	}
	return ""
}

// makeDate builds a UTC midnight date and rejects values that time.Date
// would silently normalize (e.g. 31 April -> 1 May).
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}
