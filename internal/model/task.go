package model

import (
	"time"

	"crm-service/pkg/apierror"
	"crm-service/pkg/request"
)

type Task struct {
	Entry
	TenantID    uint      `gorm:"index;not null"`
	Description string    `gorm:"size:255;not null"`
	DueDate     time.Time `gorm:"not null"`
	Completed   bool      `gorm:"default:false"`
}

type PublicTask struct {
	UUID        string  `json:"uuid"`
	Description string  `json:"description"`
	DueDate     string  `json:"dueDate"`
	Completed   bool    `json:"completed"`
	CreatedOn   string  `json:"createdOn"`
	ModifiedOn  *string `json:"modifiedOn"`
}

func (t *Task) Public() PublicTask {
	return PublicTask{
		UUID:        t.ExternalUUID,
		Description: t.Description,
		DueDate:     isoTime(t.DueDate),
		Completed:   t.Completed,
		CreatedOn:   isoTime(t.CreatedOn),
		ModifiedOn:  isoTimePtr(t.ModifiedOn),
	}
}

type TaskPayload struct {
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Completed   bool   `json:"completed"`
}

var TaskRequiredFields = []string{"description", "dueDate"}

func (p TaskPayload) parseDueDate() (time.Time, error) {
	dueDate, err := request.ParseDate(p.DueDate)
	if err != nil {
		return time.Time{}, apierror.BadRequest("Invalid fields: dueDate")
	}
	return dueDate.UTC(), nil
}

func (p TaskPayload) Entity(tenantID uint) (Task, error) {
	dueDate, err := p.parseDueDate()
	if err != nil {
		return Task{}, err
	}
	return Task{
		TenantID:    tenantID,
		Description: p.Description,
		DueDate:     dueDate,
		Completed:   p.Completed,
	}, nil
}

func (p TaskPayload) Updates() (map[string]any, error) {
	dueDate, err := p.parseDueDate()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"description": p.Description,
		"due_date":    dueDate,
		"completed":   p.Completed,
	}, nil
}
