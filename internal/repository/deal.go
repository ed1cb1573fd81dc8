package repository

import (
	"context"
	"errors"
	"time"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) Insert(ctx context.Context, deal *model.Deal) (uint, error) {
	if err := r.db.WithContext(ctx).Omit("Customer").Create(deal).Error; err != nil {
		return 0, err
	}
	return deal.ID, nil
}

// ByID reads the deal joined to its live customer for the denormalized
// public projection.
func (r *DealRepository) ByID(ctx context.Context, id uint) (*model.Deal, error) {
	var deal model.Deal
	err := r.db.WithContext(ctx).
		InnerJoins("Customer").
		First(&deal, "deals.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepository) ByExternalUUID(ctx context.Context, externalUUID string, tenantID uint) (*model.Deal, error) {
	var deal model.Deal
	err := r.db.WithContext(ctx).
		InnerJoins("Customer").
		Where("deals.external_uuid = ? AND deals.tenant_id = ?", externalUUID, tenantID).
		First(&deal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepository) List(ctx context.Context, limit, offset int, tenantID uint) ([]model.Deal, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.Deal{}).
		InnerJoins("Customer").
		Where("deals.tenant_id = ?", tenantID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var deals []model.Deal
	err := r.db.WithContext(ctx).
		InnerJoins("Customer").
		Where("deals.tenant_id = ?", tenantID).
		Order("deals.id").
		Limit(limit).
		Offset(offset).
		Find(&deals).Error
	if err != nil {
		return nil, 0, err
	}
	return deals, total, nil
}

func (r *DealRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	updates["modified_on"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&model.Deal{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *DealRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Deal{}, id).Error
}

// Count returns the number of live deals owned by the tenant.
func (r *DealRepository) Count(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Deal{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}
