// Package report builds the company report grid and renders it, along with
// the transaction export, into downloadable formats.
package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
)

// DefaultSlots is the number of cash and UPI columns per row.
const DefaultSlots = 4

// EntryRowLabel names the row holding the company's debits.
const EntryRowLabel = "Entry"

// Layout controls the shape of the report grid.
type Layout struct {
	Slots int
}

func (l Layout) slots() int {
	if l.Slots <= 0 {
		return DefaultSlots
	}
	return l.Slots
}

// Row is one line of the grid. Cash and UPI hold at most Slots amounts each;
// Total covers every amount of the row, including the ones that did not fit.
type Row struct {
	Name  string            `json:"name"`
	Cash  []decimal.Decimal `json:"cash"`
	UPI   []decimal.Decimal `json:"upi"`
	Total decimal.Decimal   `json:"total"`
}

// CompanyReport is the per-customer credit grid of one company view.
type CompanyReport struct {
	Title          string          `json:"title"`
	Company        string          `json:"company"`
	Location       string          `json:"location,omitempty"`
	GeneratedAt    time.Time       `json:"generatedAt"`
	Slots          int             `json:"slots"`
	Credits        []Row           `json:"credits"`
	Entry          Row             `json:"entry"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	AmountInWords  string          `json:"amountInWords"`
}

// BuildCompanyReport lays out txs, which must already be filtered to the
// company view. Credit rows are ordered by customer name. Debits go to the
// single entry row: cash debits fill its cash slots and UPI debits its UPI
// slots. Every debit counts towards the total debit.
func BuildCompanyReport(txs []*domain.Transaction, company, location string, layout Layout, now time.Time) *CompanyReport {
	slots := layout.slots()

	sorted := make([]*domain.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortName(sorted[i]) < sortName(sorted[j])
	})

	rows := make(map[string]*Row)
	order := make([]string, 0)
	entry := Row{Name: EntryRowLabel, Cash: []decimal.Decimal{}, UPI: []decimal.Decimal{}, Total: decimal.Zero}

	totalCredit := decimal.Zero
	for _, tx := range sorted {
		if tx.Type.IsCredit() {
			name := customerName(tx)
			row, ok := rows[name]
			if !ok {
				row = &Row{Name: name, Cash: []decimal.Decimal{}, UPI: []decimal.Decimal{}, Total: decimal.Zero}
				rows[name] = row
				order = append(order, name)
			}

			switch {
			case tx.Type == domain.TransactionTypeCashCredit && len(row.Cash) < slots:
				row.Cash = append(row.Cash, tx.Amount)
			case tx.Type == domain.TransactionTypeUPICredit && len(row.UPI) < slots:
				row.UPI = append(row.UPI, tx.Amount)
			}
			row.Total = row.Total.Add(tx.Amount)
			totalCredit = totalCredit.Add(tx.Amount)
			continue
		}

		name := string(tx.Type)
		switch {
		case strings.Contains(name, "CASH") && len(entry.Cash) < slots:
			entry.Cash = append(entry.Cash, tx.Amount)
		case strings.Contains(name, "UPI") && len(entry.UPI) < slots:
			entry.UPI = append(entry.UPI, tx.Amount)
		}
		entry.Total = entry.Total.Add(tx.Amount)
	}

	credits := make([]Row, 0, len(order))
	for _, name := range order {
		credits = append(credits, *rows[name])
	}

	closing := totalCredit.Sub(entry.Total)

	return &CompanyReport{
		Title:          domain.CompanyDisplayName(company, location),
		Company:        company,
		Location:       location,
		GeneratedAt:    now,
		Slots:          slots,
		Credits:        credits,
		Entry:          entry,
		TotalCredit:    totalCredit,
		TotalDebit:     entry.Total,
		ClosingBalance: closing,
		AmountInWords:  AmountInWords(closing),
	}
}

// FileName returns the download name of the report, e.g.
// "ACME_Pune_2024-03-01.pdf".
func FileName(r *CompanyReport, ext string) string {
	title := strings.ReplaceAll(r.Title, " ", "_")
	if title == "" {
		title = "report"
	}
	return title + "_" + r.GeneratedAt.Format("2006-01-02") + "." + strings.TrimPrefix(ext, ".")
}

// SlotHeaders returns the ordinal column headers, "1st" to the slot count.
func SlotHeaders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = ordinal(i + 1)
	}
	return out
}

func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

func sortName(tx *domain.Transaction) string {
	switch {
	case tx.CustomerName != "":
		return tx.CustomerName
	case tx.CompanyName != "":
		return tx.CompanyName
	default:
		return "z"
	}
}

func customerName(tx *domain.Transaction) string {
	switch {
	case tx.CustomerName != "":
		return tx.CustomerName
	case tx.CompanyName != "":
		return tx.CompanyName
	default:
		return "N/A"
	}
}
