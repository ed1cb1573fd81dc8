package model

// User is not owned by a single tenant; it associates to tenants through the
// UserTenant join entity.
type User struct {
	Entry
	FirstName string `gorm:"size:50;not null"`
	LastName  string `gorm:"size:50;not null"`
	Email     string `gorm:"size:100;not null"`
}

// PublicUser is the wire shape exposed to clients.
type PublicUser struct {
	UUID       string  `json:"uuid"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email"`
	CreatedOn  string  `json:"createdOn"`
	ModifiedOn *string `json:"modifiedOn"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		UUID:       u.ExternalUUID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		CreatedOn:  isoTime(u.CreatedOn),
		ModifiedOn: isoTimePtr(u.ModifiedOn),
	}
}

// UserPayload is the POST/PUT request body for users.
type UserPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// UserRequiredFields lists the payload fields every user write must carry,
// in the order violations are reported.
var UserRequiredFields = []string{"firstName", "lastName", "email"}

func (p UserPayload) Entity() User {
	return User{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
	}
}

// Updates returns the column set a PUT applies; ModifiedOn is stamped by the
// repository.
func (p UserPayload) Updates() map[string]any {
	return map[string]any{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"email":      p.Email,
	}
}
