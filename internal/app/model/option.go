package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// OptionGroup is one configurable product dimension (e.g. Size, Color).
type OptionGroup struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	ProductID    uint           `gorm:"index;not null" json:"product_id"`
	Name         string         `gorm:"not null" json:"name"`
	DisplayOrder int            `gorm:"default:0" json:"display_order"`
	SizeChartURL string         `json:"size_chart_url,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Values []OptionValue `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"values,omitempty"`
}

func (OptionGroup) TableName() string {
	return "option_groups"
}

// OptionValue is a single selectable value inside a group. IsActive=false
// means administratively disabled and never selectable.
type OptionValue struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	GroupID   uint           `gorm:"index;not null" json:"group_id"`
	Value     string         `gorm:"not null" json:"value"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OptionValue) TableName() string {
	return "option_values"
}

// ConstraintMap maps a parent option id to the child option ids it allows.
type ConstraintMap map[uint][]uint

func (m ConstraintMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (m *ConstraintMap) Scan(value interface{}) error {
	if value == nil {
		*m = ConstraintMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("unsupported constraint map source type %T", value)
}

// ChainingRelationship declares that the selection in the parent group
// restricts which values of the child group are selectable.
type ChainingRelationship struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	ProductID     uint           `gorm:"index;not null" json:"product_id"`
	ParentGroupID uint           `gorm:"not null" json:"parent_group_id"`
	ChildGroupID  uint           `gorm:"not null" json:"child_group_id"`
	Constraints   ConstraintMap  `gorm:"type:jsonb" json:"constraints"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ChainingRelationship) TableName() string {
	return "chaining_relationships"
}

// Selection is the caller-owned option selection for one product viewing
// session: group id -> chosen option id. At most one entry per group. It is
// also used as the persisted options snapshot on cart lines.
type Selection map[uint]uint

func (s Selection) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (s *Selection) Scan(value interface{}) error {
	if value == nil {
		*s = Selection{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("unsupported selection source type %T", value)
}

// Clone returns an independent copy of the selection.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
