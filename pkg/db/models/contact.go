package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Contact carries a user's address and storefront role. One per user.
type Contact struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64             `gorm:"column:user_id;not null;uniqueIndex:ux_contacts_user"`
	User      *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Type      enums.ContactType `gorm:"column:type;type:varchar(16);not null;default:'buyer'"`
	Phone     string            `gorm:"column:phone;type:varchar(32);not null;default:''"`
	City      string            `gorm:"column:city;type:varchar(64);not null;default:''"`
	Street    string            `gorm:"column:street;type:varchar(128);not null;default:''"`
	House     string            `gorm:"column:house;type:varchar(16);not null;default:''"`
	Structure string            `gorm:"column:structure;type:varchar(16);not null;default:''"`
	Building  string            `gorm:"column:building;type:varchar(16);not null;default:''"`
	Apartment string            `gorm:"column:apartment;type:varchar(16);not null;default:''"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
