package repository

import (
	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/pkg/logger"
	"gorm.io/gorm"
)

type OptionRepository interface {
	CreateGroup(group *model.OptionGroup) error
	FindGroupByID(id uint) (*model.OptionGroup, error)
	FindGroupsByProductID(productID uint) ([]model.OptionGroup, error)
	UpdateGroup(group *model.OptionGroup) error
	DeleteGroup(id uint) error

	CreateValue(value *model.OptionValue) error
	FindValueByID(id uint) (*model.OptionValue, error)
	UpdateValue(value *model.OptionValue) error
	DeleteValue(id uint) error

	CreateRelationship(rel *model.ChainingRelationship) error
	FindRelationshipByID(id uint) (*model.ChainingRelationship, error)
	FindRelationshipsByProductID(productID uint) ([]model.ChainingRelationship, error)
	UpdateRelationship(rel *model.ChainingRelationship) error
	DeleteRelationship(id uint) error
}

type optionRepository struct {
	db *gorm.DB
}

func NewOptionRepository(db *gorm.DB) OptionRepository {
	return &optionRepository{db: db}
}

func (r *optionRepository) CreateGroup(group *model.OptionGroup) error {
	if err := r.db.Create(group).Error; err != nil {
		logger.Error("Failed to create option group", err, map[string]interface{}{
			"product_id": group.ProductID,
			"name":       group.Name,
		})
		return err
	}

	logger.Debug("Option group created", map[string]interface{}{
		"group_id":   group.ID,
		"product_id": group.ProductID,
	})
	return nil
}

func (r *optionRepository) FindGroupByID(id uint) (*model.OptionGroup, error) {
	var group model.OptionGroup
	if err := r.db.Preload("Values").First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *optionRepository) FindGroupsByProductID(productID uint) ([]model.OptionGroup, error) {
	var groups []model.OptionGroup
	err := r.db.
		Where("product_id = ?", productID).
		Preload("Values").
		Order("display_order ASC, id ASC").
		Find(&groups).Error
	if err != nil {
		logger.Error("Failed to find option groups", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return groups, nil
}

func (r *optionRepository) UpdateGroup(group *model.OptionGroup) error {
	if err := r.db.Save(group).Error; err != nil {
		logger.Error("Failed to update option group", err, map[string]interface{}{
			"group_id": group.ID,
		})
		return err
	}
	return nil
}

func (r *optionRepository) DeleteGroup(id uint) error {
	if err := r.db.Delete(&model.OptionGroup{}, id).Error; err != nil {
		logger.Error("Failed to delete option group", err, map[string]interface{}{
			"group_id": id,
		})
		return err
	}
	return nil
}

func (r *optionRepository) CreateValue(value *model.OptionValue) error {
	if err := r.db.Create(value).Error; err != nil {
		logger.Error("Failed to create option value", err, map[string]interface{}{
			"group_id": value.GroupID,
			"value":    value.Value,
		})
		return err
	}

	logger.Debug("Option value created", map[string]interface{}{
		"value_id": value.ID,
		"group_id": value.GroupID,
	})
	return nil
}

func (r *optionRepository) FindValueByID(id uint) (*model.OptionValue, error) {
	var value model.OptionValue
	if err := r.db.First(&value, id).Error; err != nil {
		return nil, err
	}
	return &value, nil
}

func (r *optionRepository) UpdateValue(value *model.OptionValue) error {
	if err := r.db.Save(value).Error; err != nil {
		logger.Error("Failed to update option value", err, map[string]interface{}{
			"value_id": value.ID,
		})
		return err
	}
	return nil
}

func (r *optionRepository) DeleteValue(id uint) error {
	if err := r.db.Delete(&model.OptionValue{}, id).Error; err != nil {
		logger.Error("Failed to delete option value", err, map[string]interface{}{
			"value_id": id,
		})
		return err
	}
	return nil
}

func (r *optionRepository) CreateRelationship(rel *model.ChainingRelationship) error {
	if err := r.db.Create(rel).Error; err != nil {
		logger.Error("Failed to create chaining relationship", err, map[string]interface{}{
			"product_id":      rel.ProductID,
			"parent_group_id": rel.ParentGroupID,
			"child_group_id":  rel.ChildGroupID,
		})
		return err
	}

	logger.Debug("Chaining relationship created", map[string]interface{}{
		"relationship_id": rel.ID,
		"product_id":      rel.ProductID,
	})
	return nil
}

func (r *optionRepository) FindRelationshipByID(id uint) (*model.ChainingRelationship, error) {
	var rel model.ChainingRelationship
	if err := r.db.First(&rel, id).Error; err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *optionRepository) FindRelationshipsByProductID(productID uint) ([]model.ChainingRelationship, error) {
	var rels []model.ChainingRelationship
	err := r.db.
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&rels).Error
	if err != nil {
		logger.Error("Failed to find chaining relationships", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return rels, nil
}

func (r *optionRepository) UpdateRelationship(rel *model.ChainingRelationship) error {
	if err := r.db.Save(rel).Error; err != nil {
		logger.Error("Failed to update chaining relationship", err, map[string]interface{}{
			"relationship_id": rel.ID,
		})
		return err
	}
	return nil
}

func (r *optionRepository) DeleteRelationship(id uint) error {
	if err := r.db.Delete(&model.ChainingRelationship{}, id).Error; err != nil {
		logger.Error("Failed to delete chaining relationship", err, map[string]interface{}{
			"relationship_id": id,
		})
		return err
	}
	return nil
}
