package model

import "crm-service/pkg/request"

type Customer struct {
	Entry
	TenantID  uint    `gorm:"index;not null"`
	FirstName string  `gorm:"size:50;not null"`
	LastName  string  `gorm:"size:50;not null"`
	Email     string  `gorm:"size:100"`
	Phone     string  `gorm:"size:50"`
	Street    string  `gorm:"size:255"`
	City      string  `gorm:"size:100"`
	State     string  `gorm:"size:50"`
	ZipCode   string  `gorm:"size:20"`
	ImageURL  *string `gorm:"size:255"`
}

type PublicCustomer struct {
	UUID       string  `json:"uuid"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Street     string  `json:"street"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	ZipCode    string  `json:"zipCode"`
	ImageURL   string  `json:"imageUrl"`
	CreatedOn  string  `json:"createdOn"`
	ModifiedOn *string `json:"modifiedOn"`
}

func (c *Customer) Public() PublicCustomer {
	imageURL := ""
	if c.ImageURL != nil {
		imageURL = *c.ImageURL
	}
	return PublicCustomer{
		UUID:       c.ExternalUUID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		Street:     c.Street,
		City:       c.City,
		State:      c.State,
		ZipCode:    c.ZipCode,
		ImageURL:   imageURL,
		CreatedOn:  isoTime(c.CreatedOn),
		ModifiedOn: isoTimePtr(c.ModifiedOn),
	}
}

type CustomerPayload struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Street    string  `json:"street"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zipCode"`
	ImageURL  *string `json:"imageUrl"`
}

// CustomerSchema is the declarative body schema for customer writes:
// undeclared properties are stripped and every missing required field is
// reported in this order.
var CustomerSchema = request.Schema{
	{Name: "firstName", Type: request.String, Required: true},
	{Name: "lastName", Type: request.String, Required: true},
	{Name: "email", Type: request.String, Required: true},
	{Name: "phone", Type: request.String, Required: true},
	{Name: "street", Type: request.String, Required: true},
	{Name: "city", Type: request.String, Required: true},
	{Name: "state", Type: request.String, Required: true},
	{Name: "zipCode", Type: request.String, Required: true},
	{Name: "imageUrl", Type: request.String},
}

func (p CustomerPayload) Entity(tenantID uint) Customer {
	return Customer{
		TenantID:  tenantID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Street:    p.Street,
		City:      p.City,
		State:     p.State,
		ZipCode:   p.ZipCode,
		ImageURL:  p.ImageURL,
	}
}

func (p CustomerPayload) Updates() map[string]any {
	updates := map[string]any{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"email":      p.Email,
		"phone":      p.Phone,
		"street":     p.Street,
		"city":       p.City,
		"state":      p.State,
		"zip_code":   p.ZipCode,
	}
	if p.ImageURL != nil {
		updates["image_url"] = *p.ImageURL
	}
	return updates
}
