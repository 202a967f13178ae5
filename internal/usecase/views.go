package usecase

import (
	"sort"
	"strings"

	"github.com/iho/cashledger/internal/domain"
)

// GlobalTotals sums every transaction. A type counts as credit when its name
// contains CREDIT.
func GlobalTotals(txs []*domain.Transaction) domain.Totals {
	var totals domain.Totals
	for _, tx := range txs {
		totals.Add(tx)
	}
	return totals
}

// CompanySummaries groups transactions by company and location. Transactions
// without a company are grouped under domain.UnnamedCompany. The result is
// sorted by display name.
func CompanySummaries(txs []*domain.Transaction) []domain.CompanySummary {
	type key struct{ company, location string }

	groups := make(map[key]*domain.CompanySummary)
	order := make([]key, 0)

	for _, tx := range txs {
		k := key{company: tx.CompanyName, location: tx.Location}
		if k.company == "" {
			k.company = domain.UnnamedCompany
		}

		s, ok := groups[k]
		if !ok {
			s = &domain.CompanySummary{Company: k.company, Location: k.location}
			groups[k] = s
			order = append(order, k)
		}
		s.Add(tx)
	}

	out := make([]domain.CompanySummary, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayName() < out[j].DisplayName()
	})

	return out
}

// CompanyTransactions returns the transactions of one company, newest first.
// An empty location matches every location.
func CompanyTransactions(txs []*domain.Transaction, company, location string) []*domain.Transaction {
	out := make([]*domain.Transaction, 0)
	for _, tx := range txs {
		if !matchesCompany(tx, company) {
			continue
		}
		if location != "" && tx.Location != location {
			continue
		}
		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	return out
}

// Recent returns the first n transactions of the newest-first collection.
// A non-positive n yields an empty slice.
func Recent(txs []*domain.Transaction, n int) []*domain.Transaction {
	if n <= 0 {
		return []*domain.Transaction{}
	}
	if n > len(txs) {
		n = len(txs)
	}
	return txs[:n]
}

// Filter returns the transactions matching every set field of f, keeping the
// input order.
func Filter(txs []*domain.Transaction, f domain.TransactionFilter) []*domain.Transaction {
	customer := strings.ToLower(strings.TrimSpace(f.Customer))

	var types map[domain.TransactionType]struct{}
	if len(f.Types) > 0 {
		types = make(map[domain.TransactionType]struct{}, len(f.Types))
		for _, t := range f.Types {
			types[t] = struct{}{}
		}
	}

	out := make([]*domain.Transaction, 0)
	for _, tx := range txs {
		if f.From != nil && tx.Timestamp.Before(*f.From) {
			continue
		}
		if f.To != nil && tx.Timestamp.After(*f.To) {
			continue
		}
		if customer != "" && !strings.Contains(strings.ToLower(tx.CustomerName), customer) {
			continue
		}
		if types != nil {
			if _, ok := types[tx.Type]; !ok {
				continue
			}
		}
		if f.Company != "" && !matchesCompany(tx, f.Company) {
			continue
		}
		if f.Scope != "" && effectiveScope(tx) != f.Scope {
			continue
		}

		out = append(out, tx)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}

	return out
}

// matchesCompany compares the company name exactly. The unnamed group key
// also matches transactions without a company.
func matchesCompany(tx *domain.Transaction, company string) bool {
	if company == domain.UnnamedCompany && tx.CompanyName == "" {
		return true
	}
	return tx.CompanyName == company
}

func effectiveScope(tx *domain.Transaction) domain.Scope {
	if tx.Scope == "" {
		return domain.ScopeGlobal
	}
	return tx.Scope
}
