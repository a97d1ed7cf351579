package model

import (
	"time"

	"gorm.io/gorm"
)

// Upsell is a bundle of products offered as a single discounted purchase.
// Its pricing is derived from the member products' base prices plus the
// authored discount percentage, recomputed on every write.
type Upsell struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `json:"image_url"`
	Pricing     PricingTriple  `gorm:"embedded" json:"pricing"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Products []UpsellProduct `gorm:"foreignKey:UpsellID;constraint:OnDelete:CASCADE" json:"products,omitempty"`
}

func (Upsell) TableName() string {
	return "upsells"
}

// UpsellProduct links a member product into a bundle, ordered by Position.
type UpsellProduct struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UpsellID  uint           `gorm:"index;not null" json:"upsell_id"`
	ProductID uint           `gorm:"index;not null" json:"product_id"`
	Position  int            `gorm:"default:0" json:"position"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (UpsellProduct) TableName() string {
	return "upsell_products"
}
