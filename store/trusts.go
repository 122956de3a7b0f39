package store

import (
	"context"
	"fmt"

	"trusttracker/models"

	"github.com/shopspring/decimal"
)

// TrustDetail is a trust together with its ledger and meetings, newest first.
type TrustDetail struct {
	Trust        models.Trust
	Transactions []models.Transaction
	Meetings     []models.Meeting
	Balance      decimal.Decimal
}

func (s *Store) CreateTrust(ctx context.Context, t *models.Trust) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create trust: %w", err)
	}
	return nil
}

// ListTrusts returns every trust ordered by name.
func (s *Store) ListTrusts(ctx context.Context) ([]models.Trust, error) {
	var trusts []models.Trust
	if err := s.db.WithContext(ctx).Order("name").Order("id").Find(&trusts).Error; err != nil {
		return nil, fmt.Errorf("list trusts: %w", err)
	}
	return trusts, nil
}

func (s *Store) TrustExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Trust{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check trust %d: %w", id, err)
	}
	return n > 0, nil
}

// TrustDetail loads one trust and its children. Returns ErrNotFound for an unknown id.
func (s *Store) TrustDetail(ctx context.Context, id uint) (*TrustDetail, error) {
	db := s.db.WithContext(ctx)
	var d TrustDetail
	if err := db.First(&d.Trust, id).Error; err != nil {
		return nil, notFound(err)
	}
	if err := db.Where("trust_id = ?", id).
		Order("transaction_date DESC").Order("id DESC").
		Find(&d.Transactions).Error; err != nil {
		return nil, fmt.Errorf("list transactions for trust %d: %w", id, err)
	}
	if err := db.Where("trust_id = ?", id).
		Order("meeting_date DESC").Order("id DESC").
		Find(&d.Meetings).Error; err != nil {
		return nil, fmt.Errorf("list meetings for trust %d: %w", id, err)
	}
	d.Balance = decimal.Zero
	for _, t := range d.Transactions {
		d.Balance = d.Balance.Add(t.Amount)
	}
	return &d, nil
}
