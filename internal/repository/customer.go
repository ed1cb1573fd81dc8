// Package repository holds the per-entity data access layer. Repositories
// are constructed with an injected *gorm.DB and return nil (not an error)
// when a lookup finds no live row; soft-deleted rows are filtered by GORM on
// every read.
package repository

import (
	"context"
	"errors"
	"time"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Insert(ctx context.Context, customer *model.Customer) (uint, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return 0, err
	}
	return customer.ID, nil
}

func (r *CustomerRepository) ByID(ctx context.Context, id uint) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) ByExternalUUID(ctx context.Context, externalUUID string, tenantID uint) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).
		Where("external_uuid = ? AND tenant_id = ?", externalUUID, tenantID).
		First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns one page of the tenant's live customers plus the total count
// for the same scope.
func (r *CustomerRepository) List(ctx context.Context, limit, offset int, tenantID uint) ([]model.Customer, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("tenant_id = ?", tenantID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []model.Customer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Update applies a partial column set and stamps ModifiedOn.
func (r *CustomerRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	updates["modified_on"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SoftDelete stamps DeletedOn; the row is never physically removed.
func (r *CustomerRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Customer{}, id).Error
}

// Count returns the number of live customers owned by the tenant.
func (r *CustomerRepository) Count(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}
