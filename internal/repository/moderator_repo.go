package repository

import (
	"context"
	"errors"

	"github.com/sgsgita/moderation-backend/internal/common"
	"github.com/sgsgita/moderation-backend/internal/domain"
	"gorm.io/gorm"
)

// ModeratorRepository moderator account data access interface
type ModeratorRepository interface {
	// Read operations
	FindByID(ctx context.Context, id uint64) (*domain.Moderator, error)
	FindByUsername(ctx context.Context, username string) (*domain.Moderator, error)
	List(ctx context.Context, page, limit int) ([]domain.Moderator, int64, error)

	// Write operations
	Create(ctx context.Context, moderator *domain.Moderator) error
	UpdateRole(ctx context.Context, id uint64, role domain.Role) error
	UpdateStatus(ctx context.Context, id uint64, status string) error
	Delete(ctx context.Context, id uint64) error

	// Validation operations
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type moderatorRepository struct {
	db *gorm.DB
}

// NewModeratorRepository creates a new ModeratorRepository
func NewModeratorRepository(db *gorm.DB) ModeratorRepository {
	return &moderatorRepository{db: db}
}

// FindByID finds a moderator by ID
func (r *moderatorRepository) FindByID(ctx context.Context, id uint64) (*domain.Moderator, error) {
	var moderator domain.Moderator
	err := r.db.WithContext(ctx).First(&moderator, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrModeratorNotFound
		}
		return nil, err
	}
	return &moderator, nil
}

// FindByUsername finds a moderator by username
func (r *moderatorRepository) FindByUsername(ctx context.Context, username string) (*domain.Moderator, error) {
	var moderator domain.Moderator
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&moderator).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrModeratorNotFound
		}
		return nil, err
	}
	return &moderator, nil
}

// List returns moderators in registration order
func (r *moderatorRepository) List(ctx context.Context, page, limit int) ([]domain.Moderator, int64, error) {
	var moderators []domain.Moderator
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Moderator{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&moderators).Error
	if err != nil {
		return nil, 0, err
	}

	return moderators, total, nil
}

// Create creates a new moderator account
func (r *moderatorRepository) Create(ctx context.Context, moderator *domain.Moderator) error {
	return r.db.WithContext(ctx).Create(moderator).Error
}

// UpdateRole changes a moderator's role
func (r *moderatorRepository) UpdateRole(ctx context.Context, id uint64, role domain.Role) error {
	return r.db.WithContext(ctx).
		Model(&domain.Moderator{}).
		Where("id = ?", id).
		Update("role", role).Error
}

// UpdateStatus enables or disables a moderator account
func (r *moderatorRepository) UpdateStatus(ctx context.Context, id uint64, status string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Moderator{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes a moderator account
func (r *moderatorRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.Moderator{}, "id = ?", id).Error
}

// ExistsByUsername checks username uniqueness
func (r *moderatorRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Moderator{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByEmail checks email uniqueness
func (r *moderatorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Moderator{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
