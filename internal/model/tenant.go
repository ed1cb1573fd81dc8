package model

// Tenant owns every scoped entity. This is the core of the multi-tenant
// architecture: all customer, deal, task and activity reads and writes are
// filtered by the owning tenant's internal ID.
type Tenant struct {
	Entry
	Name string `gorm:"size:50;not null"`
}
