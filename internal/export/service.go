// Package export renders validation reports as XLSX workbooks for
// adjusters who live in spreadsheets.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rajiviyer/medical-doc-extractor/internal/rules"
)

// Service produces XLSX bytes from validation reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ReportRow pairs one report with its document identity for the workbook.
type ReportRow struct {
	DocumentName string
	RunID        string
	Report       rules.ValidationReport
}

// ExportReportsXLSX returns a workbook with one summary sheet and one
// rule-detail sheet covering all given reports.
func (s *Service) ExportReportsXLSX(reports []ReportRow) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const summarySheet = "Summary"
	const rulesSheet = "Rule Results"

	// The default sheet becomes Summary; Rule Results is added.
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(rulesSheet); err != nil {
		return nil, err
	}
	if idx, err := f.GetSheetIndex(summarySheet); err == nil {
		f.SetActiveSheet(idx)
	}

	summaryHeaders := []string{
		"Document",
		"Run ID",
		"Claim Status",
		"Risk Level",
		"Overall Valid",
		"Overall Confidence",
		"Total Deductions",
		"Recommendations",
	}
	for i, h := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(summarySheet, cell, h)
	}

	ruleHeaders := []string{
		"Document",
		"Rule",
		"Section",
		"Decision",
		"Deduction",
		"Reasoning",
		"Documents Required",
		"Confidence",
	}
	for i, h := range ruleHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(rulesSheet, cell, h)
	}

	write := func(sheet string, row, col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	summaryRow := 2
	ruleRow := 2
	for _, r := range reports {
		write(summarySheet, summaryRow, 1, r.DocumentName)
		write(summarySheet, summaryRow, 2, r.RunID)
		write(summarySheet, summaryRow, 3, string(r.Report.Status))
		write(summarySheet, summaryRow, 4, string(r.Report.RiskLevel))
		write(summarySheet, summaryRow, 5, r.Report.OverallValid)
		write(summarySheet, summaryRow, 6, fmt.Sprintf("%.2f", r.Report.OverallConfidence))
		write(summarySheet, summaryRow, 7, r.Report.TotalDeductions)
		write(summarySheet, summaryRow, 8, truncate(joinLines(r.Report.Recommendations), 200))
		summaryRow++

		for _, rr := range r.Report.RuleResults {
			write(rulesSheet, ruleRow, 1, r.DocumentName)
			write(rulesSheet, ruleRow, 2, rr.RuleName)
			write(rulesSheet, ruleRow, 3, string(rr.Section))
			write(rulesSheet, ruleRow, 4, string(rr.Decision))
			write(rulesSheet, ruleRow, 5, rr.DeductionAmount)
			write(rulesSheet, ruleRow, 6, truncate(rr.Reasoning, 140))
			write(rulesSheet, ruleRow, 7, rr.DocumentRequired)
			write(rulesSheet, ruleRow, 8, rr.ConfidenceScore)
			ruleRow++
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(summarySheet, "A", "A", 32)
	_ = f.SetColWidth(summarySheet, "B", "B", 38)
	_ = f.SetColWidth(summarySheet, "C", "E", 16)
	_ = f.SetColWidth(summarySheet, "H", "H", 60)
	_ = f.SetColWidth(rulesSheet, "A", "A", 32)
	_ = f.SetColWidth(rulesSheet, "B", "C", 20)
	_ = f.SetColWidth(rulesSheet, "F", "F", 60)
	_ = f.SetColWidth(rulesSheet, "G", "G", 44)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"reports", len(reports),
		"rule_rows", ruleRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func joinLines(lines []string) string {
	out := ""
	for i, ln := range lines {
		if i > 0 {
			out += "; "
		}
		out += ln
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
