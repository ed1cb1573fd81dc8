package repository

import (
	"context"
	"errors"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Insert(ctx context.Context, tenant *model.Tenant) (uint, error) {
	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		return 0, err
	}
	return tenant.ID, nil
}

func (r *TenantRepository) ByID(ctx context.Context, id uint) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.db.WithContext(ctx).First(&tenant, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
