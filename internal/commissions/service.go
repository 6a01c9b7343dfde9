package commissions

import (
	"context"
	"sort"
)

// RepositoryPort defines data access methods for transactions.
type RepositoryPort interface {
	ListTransactions(ctx context.Context) ([]Transaction, error)
}

// Service aggregates commission reporting for the accountant dashboard.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Report groups all transactions per practitioner, sorted by practitioner
// name for a stable table.
func (s *Service) Report(ctx context.Context) ([]PractitionerSummary, error) {
	transactions, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(transactions), nil
}

// Summarize folds transactions into per-practitioner totals.
func Summarize(transactions []Transaction) []PractitionerSummary {
	index := make(map[int64]*PractitionerSummary, len(transactions))
	for _, tx := range transactions {
		summary, ok := index[tx.PractitionerID]
		if !ok {
			summary = &PractitionerSummary{
				PractitionerID:   tx.PractitionerID,
				PractitionerName: tx.PractitionerName,
			}
			index[tx.PractitionerID] = summary
		}
		summary.Transactions++
		summary.GrossCents += tx.AmountCents
		summary.CommissionCents += tx.CommissionCents
	}
	summaries := make([]PractitionerSummary, 0, len(index))
	for _, summary := range index {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].PractitionerName == summaries[j].PractitionerName {
			return summaries[i].PractitionerID < summaries[j].PractitionerID
		}
		return summaries[i].PractitionerName < summaries[j].PractitionerName
	})
	return summaries
}
