package store

import (
	"context"
	"errors"
	"fmt"

	"trusttracker/auth"
	"trusttracker/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EnsureMaster creates the master account as an administrator when no user
// with that username exists. It reports whether a row was created.
func (s *Store) EnsureMaster(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	_, err := s.UserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	u, err := auth.NewUser(username, password, true)
	if err != nil {
		return false, fmt.Errorf("master account: %w", err)
	}
	if err := s.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	s.log.Info("provisioned master account", "username", username)
	return true, nil
}

func ptr[T any](v T) *T { return &v }

// SeedSample inserts the demonstration trusts, transactions and meetings.
// It does nothing when any trust already exists.
func (s *Store) SeedSample(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Trust{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			s.log.Info("sample data skipped: trusts already present", "count", n)
			return nil
		}
		trusts := []models.Trust{
			{Name: "Smith Family Trust", TrusteeName: "John Doe", DateEstablished: ptr("2020-01-15"), Description: "Family trust for estate planning"},
			{Name: "Johnson Charitable Trust", TrusteeName: "Jane Smith", DateEstablished: ptr("2019-06-20"), Description: "Charitable contributions trust"},
			{Name: "Williams Living Trust", TrusteeName: "John Doe", DateEstablished: ptr("2021-03-10"), Description: "Revocable living trust"},
		}
		if err := tx.Create(&trusts).Error; err != nil {
			return fmt.Errorf("seed trusts: %w", err)
		}
		smith, johnson, williams := trusts[0].ID, trusts[1].ID, trusts[2].ID

		txs := []models.Transaction{
			{TrustID: smith, TransactionDate: "2024-01-15", Amount: decimal.RequireFromString("50000.00"), TransactionType: "Deposit", Description: "Initial funding"},
			{TrustID: smith, TransactionDate: "2024-03-20", Amount: decimal.RequireFromString("-5000.00"), TransactionType: "Withdrawal", Description: "Beneficiary distribution"},
			{TrustID: johnson, TransactionDate: "2024-02-10", Amount: decimal.RequireFromString("25000.00"), TransactionType: "Deposit", Description: "Annual contribution"},
			{TrustID: williams, TransactionDate: "2024-01-05", Amount: decimal.RequireFromString("100000.00"), TransactionType: "Deposit", Description: "Property transfer"},
		}
		if err := tx.Omit("Trust", "CreatedBy").Create(&txs).Error; err != nil {
			return fmt.Errorf("seed transactions: %w", err)
		}

		meetings := []models.Meeting{
			{TrustID: smith, MeetingDate: "2024-01-10", MeetingTime: "14:00", Location: "Law Office Conference Room", Attendees: "John Doe, Smith Family", Notes: "Discussed trust setup and funding"},
			{TrustID: johnson, MeetingDate: "2024-02-05", MeetingTime: "10:00", Location: "Virtual Meeting", Attendees: "Jane Smith, Board Members", Notes: "Annual charity allocation review"},
			{TrustID: smith, MeetingDate: "2024-06-15", MeetingTime: "15:30", Location: "Client Office", Attendees: "John Doe, Smith Family", Notes: "Quarterly review of trust performance"},
		}
		if err := tx.Omit("Trust", "CreatedBy").Create(&meetings).Error; err != nil {
			return fmt.Errorf("seed meetings: %w", err)
		}
		s.log.Info("sample data inserted", "trusts", len(trusts), "transactions", len(txs), "meetings", len(meetings))
		return nil
	})
}
