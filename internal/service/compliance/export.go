package compliance

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yuadm/first-step-greet/internal/domain/compliance"
)

const (
	statusSheet  = "Status"
	summarySheet = "Summary"
)

var statusHeader = []interface{}{"Name", "Kind", "Branch ID", "Status", "Completion Date", "Record Status", "Notes", "Evidence"}

// ExportPeriodStatus writes the resolved period status as an XLSX workbook to
// w and returns the suggested file name.
func (s *ComplianceServiceImpl) ExportPeriodStatus(ctx context.Context, req compliance.PeriodStatusRequest, w io.Writer) (string, error) {
	status, err := s.GetPeriodStatus(ctx, req)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", statusSheet); err != nil {
		return "", fmt.Errorf("failed to prepare workbook: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return "", fmt.Errorf("failed to prepare workbook: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(statusSheet, "A1", &statusHeader); err != nil {
		return "", err
	}
	if err := f.SetCellStyle(statusSheet, "A1", "H1", header); err != nil {
		return "", err
	}

	for i, e := range status.Entries {
		row := []interface{}{e.Subject.Name, string(e.Subject.Kind), deref(e.Subject.BranchID), string(e.Status), "", "", "", ""}
		if e.Record != nil {
			row[4] = deref(e.Record.CompletionDate)
			row[5] = e.Record.Status
			row[6] = deref(e.Record.Notes)
			row[7] = deref(e.Record.EvidencePath)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(statusSheet, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write status row: %w", err)
		}
	}
	if err := f.SetColWidth(statusSheet, "A", "A", 32); err != nil {
		return "", err
	}
	if err := f.SetColWidth(statusSheet, "B", "H", 18); err != nil {
		return "", err
	}

	summaryRows := [][]interface{}{
		{"Compliance Type", status.Type.Name},
		{"Frequency", status.Type.Frequency},
		{"Period", status.PeriodIdentifier},
		{"Window Start", status.Window.Start.Format("2006-01-02")},
		{"Window End", status.Window.End.Format("2006-01-02")},
		{"Completed", status.Summary.Completed},
		{"Overdue", status.Summary.Overdue},
		{"Due", status.Summary.Due},
		{"Pending", status.Summary.Pending},
		{"Total", status.Summary.Total},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summaryRows)), header); err != nil {
		return "", err
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 24); err != nil {
		return "", err
	}

	if _, err := f.WriteTo(w); err != nil {
		return "", fmt.Errorf("failed to write workbook: %w", err)
	}

	name := fmt.Sprintf("compliance-%s-%s-%s.xlsx", slugify(status.Type.Name), status.PeriodIdentifier, s.exportTimestamp())
	return name, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
