package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/report"
)

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	ledger LedgerService
	query  QueryService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledger LedgerService, query QueryService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, query: query}
}

// Create records a new transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	draft, err := req.ToDraft()
	if err != nil {
		writeDomainError(w, "invalid transaction", err)
		return
	}

	tx, err := h.ledger.AddTransaction(r.Context(), draft)
	if err != nil {
		writeDomainError(w, "failed to record transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// List returns the transactions matching the query filters, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := dto.ParseFilter(r.URL.Query())
	if err != nil {
		writeDomainError(w, "invalid filter", err)
		return
	}

	txs, err := h.query.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}

// Recent returns the newest transactions.
func (h *TransactionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	txs, err := h.query.Recent(r.Context(), parseIntQuery(r, "n", 0))
	if err != nil {
		writeDomainError(w, "failed to list recent transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	tx, err := h.ledger.Transaction(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Update edits a transaction in place.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.UpdateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		writeDomainError(w, "invalid update", err)
		return
	}

	tx, err := h.ledger.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, "failed to update transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Delete removes one transaction. Unknown IDs are not an error.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	h.deleteIDs(w, r, []string{id})
}

// DeleteBatch removes every listed transaction.
func (h *TransactionHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteTransactionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	h.deleteIDs(w, r, req.IDs)
}

func (h *TransactionHandler) deleteIDs(w http.ResponseWriter, r *http.Request, ids []string) {
	deleted, err := h.ledger.DeleteTransactions(r.Context(), ids)
	if err != nil {
		writeDomainError(w, "failed to delete transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteTransactionsResponse{Deleted: deleted})
}

// ExportCSV streams the filtered transactions as CSV.
func (h *TransactionHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := dto.ParseFilter(r.URL.Query())
	if err != nil {
		writeDomainError(w, "invalid filter", err)
		return
	}

	txs, err := h.query.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to export transactions", err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteTransactionsCSV(&buf, txs); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render csv", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "transactions.csv"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
