package contacts

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// ContactDTO is the API view of a contact.
type ContactDTO struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Type      enums.ContactType `json:"type"`
	Phone     string            `json:"phone"`
	City      string            `json:"city"`
	Street    string            `json:"street"`
	House     string            `json:"house"`
	Structure string            `json:"structure"`
	Building  string            `json:"building"`
	Apartment string            `json:"apartment"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CreateContactRequest is the POST /contact/ body.
type CreateContactRequest struct {
	Type      string `json:"type" validate:"omitempty,oneof=shop buyer SHOP BUYER"`
	Phone     string `json:"phone" validate:"required,max=32"`
	City      string `json:"city" validate:"required,max=64"`
	Street    string `json:"street" validate:"required,max=128"`
	House     string `json:"house" validate:"omitempty,max=16"`
	Structure string `json:"structure" validate:"omitempty,max=16"`
	Building  string `json:"building" validate:"omitempty,max=16"`
	Apartment string `json:"apartment" validate:"omitempty,max=16"`
}

// UpdateContactRequest is the PATCH /contact/ body.
type UpdateContactRequest struct {
	Type      *string `json:"type,omitempty" validate:"omitempty,oneof=shop buyer SHOP BUYER"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	City      *string `json:"city,omitempty" validate:"omitempty,max=64"`
	Street    *string `json:"street,omitempty" validate:"omitempty,max=128"`
	House     *string `json:"house,omitempty" validate:"omitempty,max=16"`
	Structure *string `json:"structure,omitempty" validate:"omitempty,max=16"`
	Building  *string `json:"building,omitempty" validate:"omitempty,max=16"`
	Apartment *string `json:"apartment,omitempty" validate:"omitempty,max=16"`
}

func FromModel(c *models.Contact) *ContactDTO {
	if c == nil {
		return nil
	}
	return &ContactDTO{
		ID:        c.ID,
		UserID:    c.UserID,
		Type:      c.Type,
		Phone:     c.Phone,
		City:      c.City,
		Street:    c.Street,
		House:     c.House,
		Structure: c.Structure,
		Building:  c.Building,
		Apartment: c.Apartment,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
