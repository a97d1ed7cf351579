package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Collection is a merchandised product group. ProductIDs keeps the curated
// ordering; members that no longer resolve are dropped at read time.
type Collection struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Slug         string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description  string         `gorm:"type:text" json:"description"`
	ImageURL     string         `json:"image_url"`
	DisplayOrder int            `gorm:"default:0" json:"display_order"`
	ProductIDs   pq.Int64Array  `gorm:"type:bigint[];default:'{}'" json:"product_ids"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Collection) TableName() string {
	return "collections"
}
