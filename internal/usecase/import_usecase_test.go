package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
	"github.com/iho/cashledger/internal/usecase/mocks"
)

func strPtr(s string) *string { return &s }

func TestImportUseCase_Import(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	parser := mocks.NewMockImportParser(ctrl)
	parser.EXPECT().Parse(gomock.Any(), "raw text").Return([]usecase.ImportedRecord{
		{Type: strPtr("Cash Credit"), Denominations: map[string]int{"d500": 1, "d100": 0}, CustomerName: strPtr(" Ravi ")},
		{Type: strPtr("UPI_DEBIT"), Amount: strPtr("1,250.50"), UPITransactionID: strPtr("upi-77")},
	}, nil)

	uc := usecase.NewImportUseCase(parser, f.uc, f.metrics)
	created, err := uc.Import(ctx, "raw text")
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.True(t, created[0].Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "Ravi", created[0].CustomerName)
	assert.Equal(t, domain.DenominationCount{domain.D500: 1}, created[0].Denominations)
	assert.True(t, created[1].Amount.Equal(decimal.RequireFromString("1250.50")))
	assert.Equal(t, 2, f.metrics.Imported)

	v, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Denominations[domain.D500])
}

func TestImportUseCase_Failures(t *testing.T) {
	tests := []struct {
		name    string
		records []usecase.ImportedRecord
		err     error
	}{
		{name: "parser error", err: errors.New("model unavailable")},
		{name: "empty output", records: []usecase.ImportedRecord{}},
		{name: "missing type", records: []usecase.ImportedRecord{{Amount: strPtr("10")}}},
		{name: "bad amount", records: []usecase.ImportedRecord{{Type: strPtr("UPI_CREDIT"), Amount: strPtr("ten")}}},
		{name: "bad denomination", records: []usecase.ImportedRecord{{Type: strPtr("CASH_CREDIT"), Denominations: map[string]int{"d3": 1}}}},
		{
			name: "one invalid record rejects all",
			records: []usecase.ImportedRecord{
				{Type: strPtr("UPI_CREDIT"), Amount: strPtr("10")},
				{Type: strPtr("CASH_DEBIT"), Amount: strPtr("100"), Denominations: map[string]int{"d50": 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ctrl := gomock.NewController(t)
			f := newLedger(t, domain.VaultPolicyPreserve, nil)

			parser := mocks.NewMockImportParser(ctrl)
			parser.EXPECT().Parse(gomock.Any(), gomock.Any()).Return(tt.records, tt.err)

			uc := usecase.NewImportUseCase(parser, f.uc, f.metrics)
			_, err := uc.Import(ctx, "data")
			require.ErrorIs(t, err, domain.ErrImportParseFailure)

			txs, err := f.uc.Transactions(ctx)
			require.NoError(t, err)
			assert.Empty(t, txs)
			assert.Equal(t, 1, f.metrics.ImportFails)
		})
	}
}

func TestImportUseCase_EmptyInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	parser := mocks.NewMockImportParser(ctrl)

	uc := usecase.NewImportUseCase(parser, nil, nil)
	_, err := uc.Import(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrImportParseFailure)
}

func TestDraftFromRecord(t *testing.T) {
	draft, err := usecase.DraftFromRecord(usecase.ImportedRecord{
		Type:        strPtr("entry"),
		Amount:      strPtr("99"),
		Scope:       strPtr("Company"),
		CompanyName: strPtr("Acme"),
		Location:    nil,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeCompanyAdjustmentDebit, draft.Type)
	assert.Equal(t, domain.ScopeCompany, draft.Scope)
	assert.Equal(t, "Acme", draft.CompanyName)
	assert.Equal(t, "", draft.Location)
	require.NoError(t, draft.Validate())
}
