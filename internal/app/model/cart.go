package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type CartLineKind string

const (
	CartLineProduct CartLineKind = "product"
	CartLineUpsell  CartLineKind = "upsell"
)

// UpsellItemSelection records the option choices for one member product of
// an upsell cart line.
type UpsellItemSelection struct {
	ProductID       uint      `json:"product_id"`
	SelectedOptions Selection `json:"selected_options"`
}

type UpsellSelections []UpsellItemSelection

func (s UpsellSelections) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (s *UpsellSelections) Scan(value interface{}) error {
	if value == nil {
		*s = UpsellSelections{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("unsupported upsell selections source type %T", value)
}

// CartLine is one row in a user's cart: either a configured product or a
// configured upsell bundle. VariantID is the stable key used for
// selection, removal and reordering; Position defines the user-intended
// ordering and need not be contiguous.
type CartLine struct {
	ID              uint             `gorm:"primarykey" json:"id"`
	UserID          uint             `gorm:"not null;index" json:"user_id"`
	Kind            CartLineKind     `gorm:"type:varchar(10);not null" json:"kind"`
	ProductID       *uint            `gorm:"index" json:"product_id,omitempty"`
	UpsellID        *uint            `gorm:"index" json:"upsell_id,omitempty"`
	VariantID       string           `gorm:"uniqueIndex;not null" json:"variant_id"`
	Position        int              `gorm:"not null;default:0" json:"position"`
	Quantity        int              `gorm:"not null;default:1" json:"quantity"`
	SelectedOptions Selection        `gorm:"type:jsonb" json:"selected_options,omitempty"`
	UpsellItems     UpsellSelections `gorm:"type:jsonb" json:"upsell_items,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (CartLine) TableName() string {
	return "cart_lines"
}
