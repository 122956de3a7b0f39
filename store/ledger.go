package store

import (
	"context"
	"fmt"

	"trusttracker/models"
)

func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if err := s.db.WithContext(ctx).Omit("Trust", "CreatedBy").Create(t).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// ListTransactions returns all transactions, newest first, with Trust loaded.
func (s *Store) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.WithContext(ctx).Preload("Trust").Preload("CreatedBy").
		Order("transaction_date DESC").Order("id DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *Store) CreateMeeting(ctx context.Context, m *models.Meeting) error {
	if err := s.db.WithContext(ctx).Omit("Trust", "CreatedBy").Create(m).Error; err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}
	return nil
}

// ListMeetings returns all meetings, newest first, with Trust loaded.
func (s *Store) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	var ms []models.Meeting
	err := s.db.WithContext(ctx).Preload("Trust").Preload("CreatedBy").
		Order("meeting_date DESC").Order("id DESC").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return ms, nil
}

// Counts is a row count per table, used by the index summary.
type Counts struct {
	Trusts       int64
	Transactions int64
	Meetings     int64
}

func (s *Store) Counts(ctx context.Context) (Counts, error) {
	db := s.db.WithContext(ctx)
	var c Counts
	if err := db.Model(&models.Trust{}).Count(&c.Trusts).Error; err != nil {
		return c, fmt.Errorf("count trusts: %w", err)
	}
	if err := db.Model(&models.Transaction{}).Count(&c.Transactions).Error; err != nil {
		return c, fmt.Errorf("count transactions: %w", err)
	}
	if err := db.Model(&models.Meeting{}).Count(&c.Meetings).Error; err != nil {
		return c, fmt.Errorf("count meetings: %w", err)
	}
	return c, nil
}
