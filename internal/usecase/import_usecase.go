package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
)

// TransactionRecorder appends a batch of transactions atomically.
type TransactionRecorder interface {
	AddTransactions(ctx context.Context, drafts []domain.TransactionDraft) ([]*domain.Transaction, error)
}

// ImportUseCase turns free-form input into transactions. An import is all or
// nothing: if any record is unusable nothing is recorded.
type ImportUseCase struct {
	parser   ImportParser
	recorder TransactionRecorder
	metrics  MetricsRecorder
}

// NewImportUseCase creates a new ImportUseCase.
func NewImportUseCase(parser ImportParser, recorder TransactionRecorder, metrics MetricsRecorder) *ImportUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &ImportUseCase{
		parser:   parser,
		recorder: recorder,
		metrics:  metrics,
	}
}

// Import parses data and records every parsed transaction.
func (uc *ImportUseCase) Import(ctx context.Context, data string) ([]*domain.Transaction, error) {
	created, err := uc.importData(ctx, data)
	uc.metrics.ImportFinished(len(created), err)
	return created, err
}

func (uc *ImportUseCase) importData(ctx context.Context, data string) ([]*domain.Transaction, error) {
	if strings.TrimSpace(data) == "" {
		return nil, fmt.Errorf("%w: no data given", domain.ErrImportParseFailure)
	}

	records, err := uc.parser.Parse(ctx, data)
	if err != nil {
		if errors.Is(err, domain.ErrImportParseFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrImportParseFailure, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no transactions found", domain.ErrImportParseFailure)
	}
	if len(records) > domain.MaxImportRecords {
		return nil, fmt.Errorf("%w: %d records exceed the limit of %d", domain.ErrImportParseFailure, len(records), domain.MaxImportRecords)
	}

	drafts := make([]domain.TransactionDraft, 0, len(records))
	for i, rec := range records {
		draft, err := DraftFromRecord(rec)
		if err == nil {
			err = draft.Validate()
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", domain.ErrImportParseFailure, i+1, err)
		}
		drafts = append(drafts, draft)
	}

	return uc.recorder.AddTransactions(ctx, drafts)
}

// DraftFromRecord converts a parsed record into a draft. Missing optional
// fields stay empty; a missing type is an error.
func DraftFromRecord(rec ImportedRecord) (domain.TransactionDraft, error) {
	var draft domain.TransactionDraft

	if rec.Type == nil {
		return draft, domain.ErrInvalidTransactionType
	}
	t, err := domain.ParseTransactionType(*rec.Type)
	if err != nil {
		return draft, err
	}
	draft.Type = t

	if rec.Amount != nil && strings.TrimSpace(*rec.Amount) != "" {
		amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(*rec.Amount), ",", ""))
		if err != nil {
			return draft, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, *rec.Amount)
		}
		draft.Amount = amount
	}

	if rec.Scope != nil && *rec.Scope != "" {
		draft.Scope = domain.Scope(strings.ToLower(strings.TrimSpace(*rec.Scope)))
	}

	if len(rec.Denominations) > 0 {
		counts := make(domain.DenominationCount, len(rec.Denominations))
		for key, n := range rec.Denominations {
			d, err := domain.ParseDenomination(key)
			if err != nil {
				return draft, err
			}
			if n != 0 {
				counts[d] += n
			}
		}
		if len(counts) > 0 {
			draft.Denominations = counts
		}
	}

	draft.Details = domain.Details{
		CustomerName:     deref(rec.CustomerName),
		CompanyName:      deref(rec.CompanyName),
		Location:         deref(rec.Location),
		AccountID:        deref(rec.AccountID),
		ATMID:            deref(rec.ATMID),
		PartnerBankUTR:   deref(rec.PartnerBankUTR),
		UPITransactionID: deref(rec.UPITransactionID),
	}

	return draft, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
