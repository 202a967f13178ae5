package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/report"
)

// maxReportSlots bounds the slots query parameter.
const maxReportSlots = 31

// CompanyHandler serves the summary, company and report views.
type CompanyHandler struct {
	query QueryService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(query QueryService) *CompanyHandler {
	return &CompanyHandler{query: query}
}

// Summary returns the global totals and the vault.
func (h *CompanyHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.query.Summary(r.Context())
	if err != nil {
		writeDomainError(w, "failed to get summary", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryResponse{
		TotalsResponse: dto.TotalsFromDomain(summary.Totals),
		Vault:          dto.VaultFromDomain(summary.Vault),
	})
}

// Denominations returns the denomination table.
func (h *CompanyHandler) Denominations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.DenominationsFromDomain(domain.Denominations))
}

// List returns one summary per company and location.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.query.Companies(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list companies", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CompanySummariesFromDomain(summaries))
}

// Transactions returns the detail view of one company.
func (h *CompanyHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	company, ok := companyParam(w, r)
	if !ok {
		return
	}
	location := strings.TrimSpace(r.URL.Query().Get("location"))

	txs, totals, err := h.query.CompanyTransactions(r.Context(), company, location)
	if err != nil {
		writeDomainError(w, "failed to list company transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CompanyTransactionsResponse{
		Company:        company,
		Location:       location,
		TotalsResponse: dto.TotalsFromDomain(totals),
		Transactions:   dto.TransactionsFromDomain(txs),
	})
}

// Report renders the company report as json, xlsx or pdf.
func (h *CompanyHandler) Report(w http.ResponseWriter, r *http.Request) {
	company, ok := companyParam(w, r)
	if !ok {
		return
	}
	location := strings.TrimSpace(r.URL.Query().Get("location"))

	slots := parseIntQuery(r, "slots", 0)
	if slots < 0 || slots > maxReportSlots {
		writeError(w, http.StatusBadRequest, "invalid slots", fmt.Sprintf("slots must be between 1 and %d", maxReportSlots))
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}

	var (
		render      func(io.Writer, *report.CompanyReport) error
		contentType string
	)
	switch format {
	case "json":
	case "xlsx":
		render = report.WriteXLSX
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		render = report.WritePDF
		contentType = "application/pdf"
	default:
		writeError(w, http.StatusBadRequest, "invalid format", "format must be json, xlsx or pdf")
		return
	}

	rep, err := h.query.CompanyReport(r.Context(), company, location, slots)
	if err != nil {
		writeDomainError(w, "failed to build report", err)
		return
	}

	if render == nil {
		writeJSON(w, http.StatusOK, rep)
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, rep); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render report", err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(rep, format)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func companyParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	company := chi.URLParam(r, "company")
	// chi matches on RawPath when it is set, so only then is the param still escaped.
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(company); err == nil {
			company = unescaped
		}
	}
	company = strings.TrimSpace(company)

	if company == "" {
		writeError(w, http.StatusBadRequest, "missing company", "")
		return "", false
	}
	return company, true
}
