package model

import (
	"time"

	"gorm.io/gorm"
)

// PricingTriple is the pricing shape shared by products and upsells.
// SalePrice == 0 means "no sale"; for upsells BasePrice is derived from the
// member products, never authored directly.
type PricingTriple struct {
	BasePrice          float64 `gorm:"not null;default:0" json:"base_price"`
	SalePrice          float64 `gorm:"not null;default:0" json:"sale_price"`
	DiscountPercentage float64 `gorm:"not null;default:0" json:"discount_percentage"`
}

// Effective returns the price a buyer actually pays.
func (p PricingTriple) Effective() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.BasePrice
}

type Product struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description     string         `gorm:"type:text" json:"description"`
	Pricing         PricingTriple  `gorm:"embedded" json:"pricing"`
	MainImageURL    string         `json:"main_image_url"`
	ChainingEnabled bool           `gorm:"default:true" json:"chaining_enabled"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	DisplayOrder    int            `gorm:"default:0" json:"display_order"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	OptionGroups          []OptionGroup          `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"option_groups,omitempty"`
	ChainingRelationships []ChainingRelationship `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"chaining_relationships,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
