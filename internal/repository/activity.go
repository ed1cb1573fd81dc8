package repository

import (
	"context"
	"errors"
	"time"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Insert(ctx context.Context, activity *model.Activity) (uint, error) {
	if err := r.db.WithContext(ctx).Omit("Deal").Create(activity).Error; err != nil {
		return 0, err
	}
	return activity.ID, nil
}

// ByID reads the activity joined to its live parent deal so the projection
// can expose the deal's external UUID.
func (r *ActivityRepository) ByID(ctx context.Context, id uint) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).
		InnerJoins("Deal").
		First(&activity, "activities.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *ActivityRepository) ByExternalUUID(ctx context.Context, externalUUID string, tenantID uint) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).
		InnerJoins("Deal").
		Where("activities.external_uuid = ? AND activities.tenant_id = ?", externalUUID, tenantID).
		First(&activity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// List pages the tenant's live activities; dealID narrows to one parent deal
// when non-zero.
func (r *ActivityRepository) List(ctx context.Context, limit, offset int, tenantID, dealID uint) ([]model.Activity, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.InnerJoins("Deal").Where("activities.tenant_id = ?", tenantID)
		if dealID > 0 {
			db = db.Where("activities.deal_id = ?", dealID)
		}
		return db
	}

	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&model.Activity{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []model.Activity
	err := scope(r.db.WithContext(ctx)).
		Order("activities.id").
		Limit(limit).
		Offset(offset).
		Find(&activities).Error
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

func (r *ActivityRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	updates["modified_on"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *ActivityRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Activity{}, id).Error
}

// Count returns the number of live activities owned by the tenant.
func (r *ActivityRepository) Count(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}
