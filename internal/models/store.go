package models

import "gorm.io/gorm"

// Store represents a seller's shop on the marketplace.
type Store struct {
	ID             string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	OwnerID        string  `json:"owner_id" gorm:"index;type:varchar(36)" validate:"required,uuid"`
	Name           string  `json:"name" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	Slug           string  `json:"slug" gorm:"uniqueIndex;type:varchar(120)"`
	Description    string  `json:"description" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	LogoURL        string  `json:"logo_url" gorm:"type:varchar(500)" validate:"omitempty,url"`
	IsVerified     bool    `json:"is_verified"`
	CommissionRate float64 `json:"commission_rate" gorm:"default:5" validate:"gte=0,lte=100"`
	gorm.Model
}
