package model

import (
	"time"

	"crm-service/pkg/apierror"
	"crm-service/pkg/request"
)

// Activity records work done against a deal.
type Activity struct {
	Entry
	TenantID     uint `gorm:"index;not null"`
	DealID       uint `gorm:"index;not null"`
	Description  string
	ActivityDate time.Time `gorm:"not null"`
	ImageURL     *string   `gorm:"size:255"`

	// Relations
	Deal Deal `gorm:"foreignKey:DealID"`
}

// PublicActivity references its parent deal by external UUID only.
type PublicActivity struct {
	UUID         string  `json:"uuid"`
	DealUUID     string  `json:"dealUuid"`
	Description  string  `json:"description"`
	ActivityDate string  `json:"activityDate"`
	ImageURL     *string `json:"activityImageUrl"`
	CreatedOn    string  `json:"createdOn"`
	ModifiedOn   *string `json:"modifiedOn"`
}

func (a *Activity) Public() PublicActivity {
	return PublicActivity{
		UUID:         a.ExternalUUID,
		DealUUID:     a.Deal.ExternalUUID,
		Description:  a.Description,
		ActivityDate: isoTime(a.ActivityDate),
		ImageURL:     a.ImageURL,
		CreatedOn:    isoTime(a.CreatedOn),
		ModifiedOn:   isoTimePtr(a.ModifiedOn),
	}
}

type ActivityPayload struct {
	DealUUID     string  `json:"dealUuid"`
	Description  string  `json:"description"`
	ActivityDate string  `json:"activityDate"`
	ImageURL     *string `json:"activityImageUrl"`
}

var ActivityRequiredFields = []string{"description", "activityDate"}

func (p ActivityPayload) parseActivityDate() (time.Time, error) {
	activityDate, err := request.ParseDate(p.ActivityDate)
	if err != nil {
		return time.Time{}, apierror.BadRequest("Invalid fields: activityDate")
	}
	return activityDate.UTC(), nil
}

func (p ActivityPayload) Entity(tenantID, dealID uint) (Activity, error) {
	activityDate, err := p.parseActivityDate()
	if err != nil {
		return Activity{}, err
	}
	return Activity{
		TenantID:     tenantID,
		DealID:       dealID,
		Description:  p.Description,
		ActivityDate: activityDate,
		ImageURL:     p.ImageURL,
	}, nil
}

func (p ActivityPayload) Updates() (map[string]any, error) {
	activityDate, err := p.parseActivityDate()
	if err != nil {
		return nil, err
	}
	updates := map[string]any{
		"description":   p.Description,
		"activity_date": activityDate,
	}
	if p.ImageURL != nil {
		updates["image_url"] = *p.ImageURL
	}
	return updates, nil
}
