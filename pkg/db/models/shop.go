package models

import "time"

// Shop is a seller owned by exactly one SHOP contact.
type Shop struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name           string    `gorm:"column:name;type:varchar(128);not null;uniqueIndex:ux_shops_name"`
	URL            *string   `gorm:"column:url;type:varchar(512)"`
	OwnerContactID int64     `gorm:"column:owner_contact_id;not null;uniqueIndex:ux_shops_owner_contact"`
	OwnerContact   *Contact  `gorm:"foreignKey:OwnerContactID;constraint:OnDelete:CASCADE"`
	State          bool      `gorm:"column:state;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ShopCategory links a shop to the categories it carries.
type ShopCategory struct {
	ShopID     int64     `gorm:"column:shop_id;primaryKey"`
	Shop       *Shop     `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	CategoryID int64     `gorm:"column:category_id;primaryKey"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}
