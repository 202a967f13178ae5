package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Report"

// WriteXLSX renders the report grid as a single-sheet workbook.
func WriteXLSX(w io.Writer, r *CompanyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	slots := r.Slots
	lastCol := 2*slots + 2

	set := func(col, row int, value any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheetName, cell, value)
	}

	// Title block
	if err := set(1, 1, "Report for "+r.Title); err != nil {
		return err
	}
	if err := set(1, 2, "Generated on: "+r.GeneratedAt.Format("02 Jan 2006 03:04:05 PM")); err != nil {
		return err
	}

	// Two header rows: group names, then slot ordinals.
	const headRow = 4
	if err := set(1, headRow, "Customer Name"); err != nil {
		return err
	}
	if err := set(2, headRow, "Cash"); err != nil {
		return err
	}
	if err := set(2+slots, headRow, "UPI"); err != nil {
		return err
	}
	if err := set(lastCol, headRow, "Total Credit"); err != nil {
		return err
	}
	for i, h := range SlotHeaders(slots) {
		if err := set(2+i, headRow+1, h); err != nil {
			return err
		}
		if err := set(2+slots+i, headRow+1, h); err != nil {
			return err
		}
	}

	row := headRow + 2
	writeRow := func(rr Row) error {
		if err := set(1, row, rr.Name); err != nil {
			return err
		}
		for i, v := range rr.Cash {
			if err := set(2+i, row, v.InexactFloat64()); err != nil {
				return err
			}
		}
		for i, v := range rr.UPI {
			if err := set(2+slots+i, row, v.InexactFloat64()); err != nil {
				return err
			}
		}
		if err := set(lastCol, row, rr.Total.InexactFloat64()); err != nil {
			return err
		}
		row++
		return nil
	}

	for _, rr := range r.Credits {
		if err := writeRow(rr); err != nil {
			return err
		}
	}

	if err := set(lastCol-1, row, "Total Credit"); err != nil {
		return err
	}
	if err := set(lastCol, row, r.TotalCredit.InexactFloat64()); err != nil {
		return err
	}
	row++

	if err := writeRow(r.Entry); err != nil {
		return err
	}

	if err := set(lastCol-1, row, "Closing Balance"); err != nil {
		return err
	}
	if err := set(lastCol, row, r.ClosingBalance.InexactFloat64()); err != nil {
		return err
	}
	row += 2

	if err := set(1, row, "Amount in Words: "+r.AmountInWords); err != nil {
		return err
	}

	lastName, err := excelize.ColumnNumberToName(lastCol)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "A", "A", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "B", lastName, 12); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
