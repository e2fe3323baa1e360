package models

import "gorm.io/gorm"

// Product represents a product listed by a store.
//
// SalePrice, when set, is the price actually charged; Price is the list
// price. Use EffectivePrice to pick between them.
type Product struct {
	ID            string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	StoreID       string   `json:"store_id" gorm:"index;type:varchar(36)" validate:"required,uuid"`
	StoreName     string   `json:"store_name,omitempty" gorm:"-"` // Joined field, not persisted
	Title         string   `json:"title" gorm:"type:varchar(150)" validate:"required,min=3,max=150"`
	Slug          string   `json:"slug" gorm:"uniqueIndex;type:varchar(180)"`
	Description   string   `json:"description" gorm:"type:varchar(2000)" validate:"omitempty,max=2000"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	SalePrice     *float64 `json:"sale_price,omitempty" validate:"omitempty,gt=0"`
	StockQuantity int      `json:"stock_quantity" validate:"gte=0"`
	Images        []string `json:"images" gorm:"serializer:json"`
	Category      string   `json:"category" gorm:"index;type:varchar(50)" validate:"omitempty,max=50"`
	RatingAvg     float64  `json:"rating_avg" validate:"gte=0,lte=5"`
	RatingCount   int      `json:"rating_count" validate:"gte=0"`
	gorm.Model
}

// EffectivePrice returns the sale price if one is active, else the list price.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}
