package sqlstore

import (
	"time"

	"github.com/bizledger/records-api/internal/core/domain"
)

type roleRow struct {
	Name  string `gorm:"primaryKey;size:20"`
	Label string `gorm:"size:50;not null"`
}

func (roleRow) TableName() string { return "roles" }

type identityRow struct {
	ID           string  `gorm:"primaryKey;size:36"`
	Username     string  `gorm:"size:50;not null;uniqueIndex"`
	Email        string  `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string  `gorm:"size:255;not null"`
	FirstName    string  `gorm:"size:100"`
	LastName     string  `gorm:"size:100"`
	Role         string  `gorm:"size:20;not null;index"`
	RoleRef      roleRow `gorm:"foreignKey:Role;references:Name;constraint:OnUpdate:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

func (identityRow) TableName() string { return "users" }

type customerRow struct {
	ID                string      `gorm:"primaryKey;size:36"`
	FirstName         string      `gorm:"size:100;not null"`
	LastName          string      `gorm:"size:100;not null"`
	Email             string      `gorm:"size:255;not null;uniqueIndex"`
	Phone             string      `gorm:"size:50;not null"`
	Address           string      `gorm:"size:255"`
	City              string      `gorm:"size:100"`
	State             string      `gorm:"size:100"`
	PostalCode        string      `gorm:"size:20"`
	Country           string      `gorm:"size:100"`
	BusinessName      string      `gorm:"size:255;not null"`
	BusinessType      string      `gorm:"size:100;not null"`
	BusinessRegNumber string      `gorm:"size:100"`
	TINNumber         string      `gorm:"column:tin_number;size:100;not null"`
	VATNumber         string      `gorm:"column:vat_number;size:100;not null"`
	Activities        string      `gorm:"type:text"`
	CreatedBy         string      `gorm:"size:36;not null;index"`
	Creator           identityRow `gorm:"foreignKey:CreatedBy;references:ID"`
	CreatedAt         time.Time   `gorm:"index"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime:false"`
}

func (customerRow) TableName() string { return "customers" }

func identityRowFrom(i *domain.Identity) identityRow {
	return identityRow{
		ID:           i.ID,
		Username:     i.Username,
		Email:        i.Email,
		PasswordHash: i.PasswordHash,
		FirstName:    i.FirstName,
		LastName:     i.LastName,
		Role:         string(i.Role),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func (r identityRow) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Role:         domain.Role(r.Role),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func customerRowFrom(c *domain.Customer) customerRow {
	return customerRow{
		ID:                c.ID,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		Email:             c.Email,
		Phone:             c.Phone,
		Address:           c.Address,
		City:              c.City,
		State:             c.State,
		PostalCode:        c.PostalCode,
		Country:           c.Country,
		BusinessName:      c.BusinessName,
		BusinessType:      c.BusinessType,
		BusinessRegNumber: c.BusinessRegNumber,
		TINNumber:         c.TINNumber,
		VATNumber:         c.VATNumber,
		Activities:        c.Activities,
		CreatedBy:         c.CreatedBy,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func (r customerRow) toDomain() *domain.Customer {
	c := &domain.Customer{
		ID:                r.ID,
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		Email:             r.Email,
		Phone:             r.Phone,
		Address:           r.Address,
		City:              r.City,
		State:             r.State,
		PostalCode:        r.PostalCode,
		Country:           r.Country,
		BusinessName:      r.BusinessName,
		BusinessType:      r.BusinessType,
		BusinessRegNumber: r.BusinessRegNumber,
		TINNumber:         r.TINNumber,
		VATNumber:         r.VATNumber,
		Activities:        r.Activities,
		CreatedBy:         r.CreatedBy,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
	if r.Creator.ID != "" {
		c.CreatedByName = r.Creator.toDomain().DisplayName()
	}
	return c
}
