package model

import (
	"strings"
	"time"

	"crm-service/pkg/apierror"
	"crm-service/pkg/request"

	"github.com/shopspring/decimal"
)

// DealProgress uses the camelCase literals enforced by the schema's check
// constraint.
type DealProgress string

const (
	DealProgressInProgress DealProgress = "inProgress"
	DealProgressPending    DealProgress = "pending"
	DealProgressClosed     DealProgress = "closed"
)

// DealProgressValues maps accepted literals to canonical values for the
// enum query-parameter coercion.
var DealProgressValues = map[string]string{
	string(DealProgressInProgress): string(DealProgressInProgress),
	string(DealProgressPending):    string(DealProgressPending),
	string(DealProgressClosed):     string(DealProgressClosed),
}

func ParseDealProgress(s string) (DealProgress, bool) {
	_, ok := DealProgressValues[s]
	return DealProgress(s), ok
}

// RoomAccess describes how the crew gets into the property.
type RoomAccess string

const (
	RoomAccessKeysWithDoorman RoomAccess = "keysWithDoorman"
	RoomAccessKeysInLockbox   RoomAccess = "keysInLockbox"
	RoomAccessKeysObtained    RoomAccess = "keysObtained"
	RoomAccessKeysNotRequired RoomAccess = "keysNotRequired"
	RoomAccessOther           RoomAccess = "other"
)

var roomAccessValues = map[string]struct{}{
	string(RoomAccessKeysWithDoorman): {},
	string(RoomAccessKeysInLockbox):   {},
	string(RoomAccessKeysObtained):    {},
	string(RoomAccessKeysNotRequired): {},
	string(RoomAccessOther):           {},
}

func ParseRoomAccess(s string) (RoomAccess, bool) {
	_, ok := roomAccessValues[s]
	return RoomAccess(s), ok
}

type Deal struct {
	Entry
	TenantID            uint                `gorm:"index;not null"`
	CustomerID          uint                `gorm:"index;not null"`
	ImageURL            *string             `gorm:"size:255"`
	Street              string              `gorm:"size:255"`
	City                string              `gorm:"size:100"`
	State               string              `gorm:"size:50"`
	ZipCode             string              `gorm:"size:20"`
	RoomArea            decimal.NullDecimal `gorm:"type:decimal(8,2)"`
	Price               decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	NumberOfPeople      *int
	AppointmentDate     time.Time    `gorm:"not null"`
	Progress            DealProgress `gorm:"size:20;not null"`
	SpecialInstructions *string
	RoomAccess          RoomAccess `gorm:"size:20;not null"`

	// Relations
	Customer Customer `gorm:"foreignKey:CustomerID"`
}

// PublicDealCustomer is the denormalized customer projection nested in a
// deal's wire shape; the deal never exposes the internal CustomerID.
type PublicDealCustomer struct {
	UUID      string  `json:"uuid"`
	ImageURL  *string `json:"imageUrl"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
}

type PublicDeal struct {
	UUID                string              `json:"uuid"`
	Customer            PublicDealCustomer  `json:"customer"`
	Price               decimal.Decimal     `json:"price"`
	Street              string              `json:"street"`
	City                string              `json:"city"`
	State               string              `json:"state"`
	ZipCode             string              `json:"zipCode"`
	ImageURL            *string             `json:"dealImageUrl"`
	RoomArea            decimal.NullDecimal `json:"roomArea"`
	NumberOfPeople      *int                `json:"numberOfPeople"`
	AppointmentDate     string              `json:"appointmentDate"`
	Progress            DealProgress        `json:"progress"`
	SpecialInstructions *string             `json:"specialInstructions"`
	RoomAccess          RoomAccess          `json:"roomAccess"`
	CreatedOn           string              `json:"createdOn"`
	ModifiedOn          *string             `json:"modifiedOn"`
}

// Public projects the deal and its joined customer into the wire shape.
func (d *Deal) Public() PublicDeal {
	return PublicDeal{
		UUID: d.ExternalUUID,
		Customer: PublicDealCustomer{
			UUID:      d.Customer.ExternalUUID,
			ImageURL:  d.Customer.ImageURL,
			FirstName: d.Customer.FirstName,
			LastName:  d.Customer.LastName,
			Email:     d.Customer.Email,
			Phone:     d.Customer.Phone,
		},
		Price:               d.Price,
		Street:              d.Street,
		City:                d.City,
		State:               d.State,
		ZipCode:             d.ZipCode,
		ImageURL:            d.ImageURL,
		RoomArea:            d.RoomArea,
		NumberOfPeople:      d.NumberOfPeople,
		AppointmentDate:     isoTime(d.AppointmentDate),
		Progress:            d.Progress,
		SpecialInstructions: d.SpecialInstructions,
		RoomAccess:          d.RoomAccess,
		CreatedOn:           isoTime(d.CreatedOn),
		ModifiedOn:          isoTimePtr(d.ModifiedOn),
	}
}

type DealPayload struct {
	CustomerUUID        string              `json:"customerUuid"`
	Price               decimal.Decimal     `json:"price"`
	Street              string              `json:"street"`
	City                string              `json:"city"`
	State               string              `json:"state"`
	ZipCode             string              `json:"zipCode"`
	ImageURL            *string             `json:"dealImageUrl"`
	RoomArea            decimal.NullDecimal `json:"roomArea"`
	NumberOfPeople      *int                `json:"numberOfPeople"`
	AppointmentDate     string              `json:"appointmentDate"`
	Progress            string              `json:"progress"`
	SpecialInstructions *string             `json:"specialInstructions"`
	RoomAccess          string              `json:"roomAccess"`
}

var DealRequiredFields = []string{
	"price", "street", "city", "state", "zipCode",
	"roomArea", "numberOfPeople", "appointmentDate", "progress", "roomAccess",
}

type dealParsed struct {
	appointmentDate time.Time
	progress        DealProgress
	roomAccess      RoomAccess
}

func (p DealPayload) parse() (dealParsed, error) {
	var parsed dealParsed
	var invalid []string

	appointmentDate, err := request.ParseDate(p.AppointmentDate)
	if err != nil {
		invalid = append(invalid, "appointmentDate")
	}
	progress, ok := ParseDealProgress(p.Progress)
	if !ok {
		invalid = append(invalid, "progress")
	}
	roomAccess, ok := ParseRoomAccess(p.RoomAccess)
	if !ok {
		invalid = append(invalid, "roomAccess")
	}

	if len(invalid) > 0 {
		return parsed, apierror.BadRequest("Invalid fields: " + strings.Join(invalid, ", "))
	}

	parsed.appointmentDate = appointmentDate.UTC()
	parsed.progress = progress
	parsed.roomAccess = roomAccess
	return parsed, nil
}

func (p DealPayload) Entity(tenantID, customerID uint) (Deal, error) {
	parsed, err := p.parse()
	if err != nil {
		return Deal{}, err
	}
	return Deal{
		TenantID:            tenantID,
		CustomerID:          customerID,
		ImageURL:            p.ImageURL,
		Street:              p.Street,
		City:                p.City,
		State:               p.State,
		ZipCode:             p.ZipCode,
		RoomArea:            p.RoomArea,
		Price:               p.Price,
		NumberOfPeople:      p.NumberOfPeople,
		AppointmentDate:     parsed.appointmentDate,
		Progress:            parsed.progress,
		SpecialInstructions: p.SpecialInstructions,
		RoomAccess:          parsed.roomAccess,
	}, nil
}

// Updates returns the column set a PUT applies. The referenced customer is
// re-resolved by the handler, so customer_id is included there, not here.
func (p DealPayload) Updates() (map[string]any, error) {
	parsed, err := p.parse()
	if err != nil {
		return nil, err
	}
	updates := map[string]any{
		"street":           p.Street,
		"city":             p.City,
		"state":            p.State,
		"zip_code":         p.ZipCode,
		"room_area":        p.RoomArea,
		"price":            p.Price,
		"appointment_date": parsed.appointmentDate,
		"progress":         parsed.progress,
		"room_access":      parsed.roomAccess,
	}
	if p.ImageURL != nil {
		updates["image_url"] = *p.ImageURL
	}
	if p.NumberOfPeople != nil {
		updates["number_of_people"] = *p.NumberOfPeople
	}
	if p.SpecialInstructions != nil {
		updates["special_instructions"] = *p.SpecialInstructions
	}
	return updates, nil
}
