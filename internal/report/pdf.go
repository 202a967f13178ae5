package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// WritePDF renders the report as a landscape A4 grid.
func WritePDF(w io.Writer, r *CompanyReport) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Report for "+r.Title, true)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	generated := r.GeneratedAt.Format("02 Jan 2006 03:04:05 PM")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, generated, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, tr("Report for "+r.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated on: "+generated, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	slots := r.Slots
	nameWidth := 40.0
	totalWidth := 30.0
	slotWidth := (usable - nameWidth - totalWidth) / float64(2*slots)
	const lineHeight = 7.0

	// Header
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(220, 220, 220)
	y := pdf.GetY()
	pdf.CellFormat(nameWidth, 2*lineHeight, "Customer Name", "1", 0, "C", true, 0, "")
	pdf.CellFormat(slotWidth*float64(slots), lineHeight, "Cash", "1", 0, "C", true, 0, "")
	pdf.CellFormat(slotWidth*float64(slots), lineHeight, "UPI", "1", 0, "C", true, 0, "")
	pdf.CellFormat(totalWidth, 2*lineHeight, "Total Credit", "1", 0, "C", true, 0, "")
	pdf.SetXY(left+nameWidth, y+lineHeight)
	headers := SlotHeaders(slots)
	for pass := 0; pass < 2; pass++ {
		for _, h := range headers {
			pdf.CellFormat(slotWidth, lineHeight, h, "1", 0, "C", true, 0, "")
		}
	}
	pdf.Ln(-1)

	row := func(rr Row) {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(nameWidth, lineHeight, tr(rr.Name), "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for i := 0; i < slots; i++ {
			pdf.CellFormat(slotWidth, lineHeight, slotText(rr.Cash, i), "1", 0, "R", false, 0, "")
		}
		for i := 0; i < slots; i++ {
			pdf.CellFormat(slotWidth, lineHeight, slotText(rr.UPI, i), "1", 0, "R", false, 0, "")
		}
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(totalWidth, lineHeight, FormatAmount(rr.Total), "1", 1, "R", false, 0, "")
	}
	footer := func(label, value string, fill [3]int) {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(nameWidth+slotWidth*float64(2*slots)-totalWidth, lineHeight, "", "1", 0, "", false, 0, "")
		pdf.CellFormat(totalWidth, lineHeight, label, "1", 0, "R", false, 0, "")
		pdf.SetFillColor(fill[0], fill[1], fill[2])
		pdf.CellFormat(totalWidth, lineHeight, value, "1", 1, "R", true, 0, "")
	}

	for _, rr := range r.Credits {
		row(rr)
	}
	footer("Total Credit", FormatAmount(r.TotalCredit), [3]int{223, 240, 216})
	row(r.Entry)
	if r.ClosingBalance.IsNegative() {
		footer("Closing Balance", FormatAmount(r.ClosingBalance), [3]int{242, 222, 222})
	} else {
		footer("Closing Balance", FormatAmount(r.ClosingBalance), [3]int{223, 240, 216})
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Amount in Words: "+r.AmountInWords, "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func slotText(values []decimal.Decimal, i int) string {
	if i < len(values) {
		return FormatAmount(values[i])
	}
	return ""
}
