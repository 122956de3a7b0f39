package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"trusttracker/models"
)

// MonthSummary totals one trust's transactions dated within a month.
type MonthSummary struct {
	TrustID      uint
	TrustName    string
	Count        int
	Total        decimal.Decimal
	Transactions []models.Transaction
}

// MonthlyReport groups the transactions of month (YYYY-MM) by trust, ordered
// by trust name. Trusts without activity in the month are left out.
func (s *Store) MonthlyReport(ctx context.Context, month string) ([]MonthSummary, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", month, err)
	}
	end := start.AddDate(0, 1, 0)

	var txs []models.Transaction
	err = s.db.WithContext(ctx).Preload("Trust").
		Where("transaction_date >= ? AND transaction_date < ?", start.Format(models.DateLayout), end.Format(models.DateLayout)).
		Order("transaction_date, id").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("query report for %s: %w", month, err)
	}

	byTrust := map[uint]*MonthSummary{}
	for _, tx := range txs {
		sum, ok := byTrust[tx.TrustID]
		if !ok {
			sum = &MonthSummary{TrustID: tx.TrustID, TrustName: tx.Trust.Name}
			byTrust[tx.TrustID] = sum
		}
		sum.Count++
		sum.Total = sum.Total.Add(tx.Amount)
		sum.Transactions = append(sum.Transactions, tx)
	}

	out := make([]MonthSummary, 0, len(byTrust))
	for _, sum := range byTrust {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TrustName != out[j].TrustName {
			return out[i].TrustName < out[j].TrustName
		}
		return out[i].TrustID < out[j].TrustID
	})
	return out, nil
}
