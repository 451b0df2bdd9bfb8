package models

import "time"

// User represents the canonical identity entity.
type User struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string     `gorm:"column:username;type:varchar(150);not null;uniqueIndex:ux_users_username"`
	Email        string     `gorm:"column:email;type:varchar(254);not null;uniqueIndex:ux_users_email"`
	FirstName    string     `gorm:"column:first_name;type:varchar(150);not null;default:''"`
	LastName     string     `gorm:"column:last_name;type:varchar(150);not null;default:''"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	SystemRole   *string    `gorm:"column:system_role;type:varchar(32)"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
