package repository

import (
	"context"
	"errors"
	"time"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Insert(ctx context.Context, user *model.User) (uint, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (r *UserRepository) ByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ByExternalUUID is unscoped: users have no tenant column and are linked to
// tenants through the join table instead.
func (r *UserRepository) ByExternalUUID(ctx context.Context, externalUUID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("external_uuid = ?", externalUUID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List pages live users; when tenantID is non-zero it narrows to members of
// that tenant via the user_tenants join table.
func (r *UserRepository) List(ctx context.Context, limit, offset int, tenantID uint) ([]model.User, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if tenantID > 0 {
			db = db.
				Joins("JOIN user_tenants ON user_tenants.user_id = users.id AND user_tenants.deleted_on IS NULL").
				Where("user_tenants.tenant_id = ?", tenantID)
		}
		return db
	}

	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&model.User{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := scope(r.db.WithContext(ctx)).
		Order("users.id").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	updates["modified_on"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *UserRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, id).Error
}
