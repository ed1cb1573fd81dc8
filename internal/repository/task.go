package repository

import (
	"context"
	"errors"
	"time"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Insert(ctx context.Context, task *model.Task) (uint, error) {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return 0, err
	}
	return task.ID, nil
}

func (r *TaskRepository) ByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ByExternalUUID(ctx context.Context, externalUUID string, tenantID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Where("external_uuid = ? AND tenant_id = ?", externalUUID, tenantID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, limit, offset int, tenantID uint) ([]model.Task, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("tenant_id = ?", tenantID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *TaskRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	updates["modified_on"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *TaskRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Task{}, id).Error
}

// Count returns the number of live tasks owned by the tenant.
func (r *TaskRepository) Count(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}
