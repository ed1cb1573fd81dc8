package repository

import (
	"context"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

type UserTenantRepository struct {
	db *gorm.DB
}

func NewUserTenantRepository(db *gorm.DB) *UserTenantRepository {
	return &UserTenantRepository{db: db}
}

// Link associates a user with a tenant. Idempotent: an existing live link is
// left untouched.
func (r *UserTenantRepository) Link(ctx context.Context, userID, tenantID uint) error {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserTenant{}).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	link := model.UserTenant{UserID: userID, TenantID: tenantID}
	return r.db.WithContext(ctx).Create(&link).Error
}

// Unlink soft-deletes the association.
func (r *UserTenantRepository) Unlink(ctx context.Context, userID, tenantID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		Delete(&model.UserTenant{}).Error
}

// Exists reports whether a live link between the user and tenant is present.
func (r *UserTenantRepository) Exists(ctx context.Context, userID, tenantID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserTenant{}).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		Count(&count).Error
	return count > 0, err
}
