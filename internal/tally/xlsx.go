package tally

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	reconciliationSheet = "Reconciliation"
	summarySheet        = "Summary"
)

// WriteXLSX writes a workbook listing every contest/option cell with its
// expected and actual count, plus a summary sheet.
func WriteXLSX(w io.Writer, expected ExpectedVotes, actual ActualVotes, result ValidationResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reconciliationSheet); err != nil {
		return err
	}
	headers := []interface{}{"Contest ID", "Option ID", "Expected", "Actual", "Status"}
	if err := setRow(f, reconciliationSheet, 1, headers...); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(reconciliationSheet, 1, 1, headerStyle); err != nil {
		return err
	}
	mismatchStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FDE2E1"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	merged := Counts{}
	for _, c := range []Counts{expected, actual} {
		for contestID, options := range c {
			for optionID := range options {
				merged.Add(contestID, optionID, 0)
			}
		}
	}

	row := 2
	for _, contestID := range merged.ContestIDs() {
		for _, optionID := range merged.OptionIDs(contestID) {
			want, got := expected.Get(contestID, optionID), actual.Get(contestID, optionID)
			status := "ok"
			switch {
			case !expected.Has(contestID, optionID) && got > 0:
				status = "unexpected"
			case want != got:
				status = "mismatch"
			}
			if err := setRow(f, reconciliationSheet, row, contestID, optionID, want, got, status); err != nil {
				return err
			}
			if status != "ok" {
				if err := f.SetCellStyle(reconciliationSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), mismatchStyle); err != nil {
					return err
				}
			}
			row++
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	summary := [][]interface{}{
		{"Valid", fmt.Sprint(result.IsValid)},
		{"Expected votes", expected.Total()},
		{"Actual votes", actual.Total()},
		{"Mismatches", len(result.Mismatches)},
		{"Message", result.Message},
	}
	for i, kv := range summary {
		if err := setRow(f, summarySheet, i+1, kv...); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write reconciliation workbook: %w", err)
	}
	return nil
}

// setRow writes values into consecutive cells of one row, starting at column A.
func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
