package model

// UserTenant links users to tenants, letting one user work across multiple
// tenants.
type UserTenant struct {
	Entry
	UserID   uint `gorm:"index;not null"`
	TenantID uint `gorm:"index;not null"`

	// Relations
	User   User   `gorm:"foreignKey:UserID"`
	Tenant Tenant `gorm:"foreignKey:TenantID"`
}
