package store

import (
	"context"
	"fmt"
	"strings"

	"trusttracker/models"

	"gorm.io/gorm"
)

// CreateUser inserts u. A duplicate username yields ErrUsernameTaken.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	db := s.db.WithContext(ctx)
	// pre-check existing (optimistic)
	var n int64
	if err := db.Model(&models.User{}).Where("username = ?", u.Username).Count(&n).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if n > 0 {
		return ErrUsernameTaken
	}
	if err := db.Create(u).Error; err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// ListUsers returns every user ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// DeleteUser removes the user with id. Records they created keep existing
// with created_by cleared.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Cleared explicitly so engines without FK enforcement agree.
		if err := tx.Model(&models.Transaction{}).Where("created_by = ?", id).Update("created_by", nil).Error; err != nil {
			return fmt.Errorf("detach transactions of user %d: %w", id, err)
		}
		if err := tx.Model(&models.Meeting{}).Where("created_by = ?", id).Update("created_by", nil).Error; err != nil {
			return fmt.Errorf("detach meetings of user %d: %w", id, err)
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SetPasswordHash replaces the stored hash for username.
func (s *Store) SetPasswordHash(ctx context.Context, username string, hash []byte) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", strings.TrimSpace(username)).
		Update("password_hash", hash)
	if res.Error != nil {
		return fmt.Errorf("update password for %s: %w", username, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
