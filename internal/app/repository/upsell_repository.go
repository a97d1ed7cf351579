package repository

import (
	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/pkg/logger"
	"gorm.io/gorm"
)

type UpsellRepository interface {
	Create(upsell *model.Upsell) error
	FindByID(id uint) (*model.Upsell, error)
	FindByIDs(ids []uint) ([]model.Upsell, error)
	FindAll(activeOnly bool) ([]model.Upsell, error)
	Update(upsell *model.Upsell) error
	Delete(id uint) error
	ReplaceProducts(upsellID uint, products []model.UpsellProduct) error
}

type upsellRepository struct {
	db *gorm.DB
}

func NewUpsellRepository(db *gorm.DB) UpsellRepository {
	return &upsellRepository{db: db}
}

func (r *upsellRepository) Create(upsell *model.Upsell) error {
	if err := r.db.Create(upsell).Error; err != nil {
		logger.Error("Failed to create upsell", err, map[string]interface{}{
			"name": upsell.Name,
		})
		return err
	}

	logger.Debug("Upsell created", map[string]interface{}{
		"upsell_id": upsell.ID,
	})
	return nil
}

func (r *upsellRepository) FindByID(id uint) (*model.Upsell, error) {
	var upsell model.Upsell
	err := r.db.
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("upsell_products.position ASC")
		}).
		Preload("Products.Product").
		First(&upsell, id).Error
	if err != nil {
		return nil, err
	}
	return &upsell, nil
}

func (r *upsellRepository) FindByIDs(ids []uint) ([]model.Upsell, error) {
	if len(ids) == 0 {
		return []model.Upsell{}, nil
	}

	var upsells []model.Upsell
	err := r.db.
		Where("id IN ?", ids).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("upsell_products.position ASC")
		}).
		Preload("Products.Product").
		Find(&upsells).Error
	if err != nil {
		logger.Error("Failed to bulk-find upsells", err, map[string]interface{}{
			"requested": len(ids),
		})
		return nil, err
	}
	return upsells, nil
}

func (r *upsellRepository) FindAll(activeOnly bool) ([]model.Upsell, error) {
	var upsells []model.Upsell
	query := r.db.
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("upsell_products.position ASC")
		}).
		Preload("Products.Product").
		Order("id ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&upsells).Error; err != nil {
		logger.Error("Failed to list upsells", err, map[string]interface{}{
			"active_only": activeOnly,
		})
		return nil, err
	}
	return upsells, nil
}

func (r *upsellRepository) Update(upsell *model.Upsell) error {
	if err := r.db.Save(upsell).Error; err != nil {
		logger.Error("Failed to update upsell", err, map[string]interface{}{
			"upsell_id": upsell.ID,
		})
		return err
	}

	logger.Debug("Upsell updated", map[string]interface{}{
		"upsell_id": upsell.ID,
	})
	return nil
}

func (r *upsellRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Upsell{}, id).Error; err != nil {
		logger.Error("Failed to delete upsell", err, map[string]interface{}{
			"upsell_id": id,
		})
		return err
	}
	return nil
}

// ReplaceProducts swaps the bundle membership in one transaction.
func (r *upsellRepository) ReplaceProducts(upsellID uint, products []model.UpsellProduct) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("upsell_id = ?", upsellID).Delete(&model.UpsellProduct{}).Error; err != nil {
			logger.Error("Failed to clear upsell products", err, map[string]interface{}{
				"upsell_id": upsellID,
			})
			return err
		}

		for i := range products {
			products[i].ID = 0
			products[i].UpsellID = upsellID
		}
		if len(products) > 0 {
			if err := tx.Create(&products).Error; err != nil {
				logger.Error("Failed to insert upsell products", err, map[string]interface{}{
					"upsell_id": upsellID,
					"count":     len(products),
				})
				return err
			}
		}
		return nil
	})
}
