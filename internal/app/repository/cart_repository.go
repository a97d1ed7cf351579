package repository

import (
	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	Create(line *model.CartLine) error
	FindByUserID(userID uint) ([]model.CartLine, error)
	FindByVariantID(userID uint, variantID string) (*model.CartLine, error)
	Update(line *model.CartLine) error
	ReorderPositions(userID uint, variantIDs []string) error
	Delete(id uint) error
	DeleteByVariantIDs(userID uint, variantIDs []string) error
	DeleteByUserID(userID uint) error
	MaxPosition(userID uint) (int, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(line *model.CartLine) error {
	if err := r.db.Create(line).Error; err != nil {
		logger.Error("Failed to create cart line", err, map[string]interface{}{
			"user_id": line.UserID,
			"kind":    line.Kind,
		})
		return err
	}

	logger.Debug("Cart line created", map[string]interface{}{
		"cart_line_id": line.ID,
		"variant_id":   line.VariantID,
		"user_id":      line.UserID,
	})
	return nil
}

func (r *cartRepository) FindByUserID(userID uint) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.db.
		Where("user_id = ?", userID).
		Order("position ASC, id ASC").
		Find(&lines).Error
	if err != nil {
		logger.Error("Failed to find cart lines", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return lines, nil
}

func (r *cartRepository) FindByVariantID(userID uint, variantID string) (*model.CartLine, error) {
	var line model.CartLine
	err := r.db.
		Where("user_id = ? AND variant_id = ?", userID, variantID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *cartRepository) Update(line *model.CartLine) error {
	if err := r.db.Save(line).Error; err != nil {
		logger.Error("Failed to update cart line", err, map[string]interface{}{
			"cart_line_id": line.ID,
		})
		return err
	}
	return nil
}

// ReorderPositions rewrites line positions following the slice order, in
// one transaction. A variant id matching no line rolls the whole reorder
// back with gorm.ErrRecordNotFound.
func (r *cartRepository) ReorderPositions(userID uint, variantIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for position, variantID := range variantIDs {
			res := tx.Model(&model.CartLine{}).
				Where("user_id = ? AND variant_id = ?", userID, variantID).
				Update("position", position)
			if res.Error != nil {
				logger.Error("Failed to update cart line position", res.Error, map[string]interface{}{
					"user_id":    userID,
					"variant_id": variantID,
					"position":   position,
				})
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

func (r *cartRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.CartLine{}, id).Error; err != nil {
		logger.Error("Failed to delete cart line", err, map[string]interface{}{
			"cart_line_id": id,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteByVariantIDs(userID uint, variantIDs []string) error {
	if len(variantIDs) == 0 {
		return nil
	}

	err := r.db.
		Where("user_id = ? AND variant_id IN ?", userID, variantIDs).
		Delete(&model.CartLine{}).Error
	if err != nil {
		logger.Error("Failed to delete cart lines by variant ids", err, map[string]interface{}{
			"user_id": userID,
			"count":   len(variantIDs),
		})
		return err
	}

	logger.Debug("Cart lines deleted", map[string]interface{}{
		"user_id": userID,
		"count":   len(variantIDs),
	})
	return nil
}

func (r *cartRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.CartLine{}).Error; err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Debug("Cart cleared", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (r *cartRepository) MaxPosition(userID uint) (int, error) {
	var max *int
	err := r.db.Model(&model.CartLine{}).
		Where("user_id = ?", userID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		logger.Error("Failed to read max cart position", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
