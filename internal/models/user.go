package models

import "gorm.io/gorm"

// Roles a marketplace account can hold.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User represents a marketplace account (buyer or seller).
type User struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email       string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	FullName    string `json:"full_name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	PhoneNumber string `json:"phone_number" gorm:"type:varchar(20)" validate:"omitempty,max=20"`
	Password    string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role        string `json:"role" gorm:"type:varchar(20);default:buyer" validate:"omitempty,oneof=buyer seller admin"`
	AvatarURL   string `json:"avatar_url" gorm:"type:varchar(500)" validate:"omitempty,url"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
