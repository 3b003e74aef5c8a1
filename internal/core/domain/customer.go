package domain

import (
	"strings"
	"time"
)

// DefaultCountry is applied when a customer is stored without a country.
const DefaultCountry = "Sri Lanka"

// Customer is a business record owned by the identity that created it.
type Customer struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Address           string    `json:"address"`
	City              string    `json:"city"`
	State             string    `json:"state"`
	PostalCode        string    `json:"postal_code"`
	Country           string    `json:"country"`
	BusinessName      string    `json:"business_name"`
	BusinessType      string    `json:"business_type"`
	BusinessRegNumber string    `json:"business_reg_number"`
	TINNumber         string    `json:"tin_number"`
	VATNumber         string    `json:"vat_number"`
	Activities        string    `json:"activities"`
	CreatedBy         string    `json:"created_by"`
	CreatedByName     string    `json:"created_by_name"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CustomerFields is the writable part of a customer.
type CustomerFields struct {
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Address           string
	City              string
	State             string
	PostalCode        string
	Country           string
	BusinessName      string
	BusinessType      string
	BusinessRegNumber string
	TINNumber         string
	VATNumber         string
	Activities        string
}

// Normalize trims every field, lower-cases the email and applies the default
// country.
func (f CustomerFields) Normalize() CustomerFields {
	out := CustomerFields{
		FirstName:         strings.TrimSpace(f.FirstName),
		LastName:          strings.TrimSpace(f.LastName),
		Email:             NormalizeEmail(f.Email),
		Phone:             strings.TrimSpace(f.Phone),
		Address:           strings.TrimSpace(f.Address),
		City:              strings.TrimSpace(f.City),
		State:             strings.TrimSpace(f.State),
		PostalCode:        strings.TrimSpace(f.PostalCode),
		Country:           strings.TrimSpace(f.Country),
		BusinessName:      strings.TrimSpace(f.BusinessName),
		BusinessType:      strings.TrimSpace(f.BusinessType),
		BusinessRegNumber: strings.TrimSpace(f.BusinessRegNumber),
		TINNumber:         strings.TrimSpace(f.TINNumber),
		VATNumber:         strings.TrimSpace(f.VATNumber),
		Activities:        strings.TrimSpace(f.Activities),
	}
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	return out
}

// Validate checks the required fields of a normalized CustomerFields.
func (f CustomerFields) Validate() error {
	required := []struct {
		name, value string
	}{
		{"first_name", f.FirstName},
		{"last_name", f.LastName},
		{"email", f.Email},
		{"phone", f.Phone},
		{"business_name", f.BusinessName},
		{"business_type", f.BusinessType},
		{"tin_number", f.TINNumber},
		{"vat_number", f.VATNumber},
	}
	for _, r := range required {
		if r.value == "" {
			return Invalid(r.name + " is required")
		}
	}
	if !strings.Contains(f.Email, "@") {
		return Invalid("email must be a valid email")
	}
	return nil
}

// Apply copies the writable fields onto c.
func (f CustomerFields) Apply(c *Customer) {
	c.FirstName = f.FirstName
	c.LastName = f.LastName
	c.Email = f.Email
	c.Phone = f.Phone
	c.Address = f.Address
	c.City = f.City
	c.State = f.State
	c.PostalCode = f.PostalCode
	c.Country = f.Country
	c.BusinessName = f.BusinessName
	c.BusinessType = f.BusinessType
	c.BusinessRegNumber = f.BusinessRegNumber
	c.TINNumber = f.TINNumber
	c.VATNumber = f.VATNumber
	c.Activities = f.Activities
}
