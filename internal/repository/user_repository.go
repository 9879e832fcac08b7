package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"userwatch/internal/model"
)

// UserRepository handles reads and writes of observed accounts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user %d: %w", user.UserID, err)
	}
	return nil
}

// UpdateProfile refreshes the mutable profile attributes of an existing user.
// CurrentUsername is deliberately not touched here; it only moves through
// SetCurrentUsername together with a history append.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, updates map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("user_id = ?", userID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("update user %d: %w", userID, err)
	}
	return nil
}

func (r *UserRepository) SetCurrentUsername(ctx context.Context, userID int64, username string) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("user_id = ?", userID).
		Update("current_username", username).Error; err != nil {
		return fmt.Errorf("set username for user %d: %w", userID, err)
	}
	return nil
}

// FindByCurrentUsername returns users whose current username equals the
// given value, compared case-insensitively.
func (r *UserRepository) FindByCurrentUsername(ctx context.Context, username string) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).
		Where("current_username <> '' AND LOWER(current_username) = LOWER(?)", username).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("user_id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
