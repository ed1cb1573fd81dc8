package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry carries the lifecycle columns shared by every CRM table. The internal
// ID is never serialized; clients only ever see the external UUID, which is
// assigned at insert time and immutable for the life of the row. Rows are
// soft-deleted only: DeletedOn is set and GORM filters them from every read.
type Entry struct {
	ID           uint           `json:"-" gorm:"primaryKey"`
	ExternalUUID string         `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	CreatedOn    time.Time      `json:"createdOn" gorm:"not null"`
	ModifiedOn   *time.Time     `json:"modifiedOn"`
	DeletedOn    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ExternalUUID == "" {
		e.ExternalUUID = uuid.NewString()
	}
	if e.CreatedOn.IsZero() {
		e.CreatedOn = time.Now().UTC()
	}
	return nil
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func isoTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := isoTime(*t)
	return &s
}

// PaginatedResponse wraps a page of public projections with the unfiltered
// total for the same scope.
type PaginatedResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
