package repository

import (
	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	FindByIDs(ids []uint) ([]model.Product, error)
	FindAll(activeOnly bool) ([]model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error
}

type productRepository struct {
	db          *gorm.DB
	lookupBatch int
}

func NewProductRepository(db *gorm.DB, lookupBatch int) ProductRepository {
	if lookupBatch <= 0 {
		lookupBatch = 500
	}
	return &productRepository{db: db, lookupBatch: lookupBatch}
}

func (r *productRepository) Create(product *model.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": product.Name,
			"slug": product.Slug,
		})
		return err
	}

	logger.Debug("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Preload("OptionGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("option_groups.display_order ASC")
		}).
		Preload("OptionGroups.Values").
		Preload("ChainingRelationships").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Preload("OptionGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("option_groups.display_order ASC")
		}).
		Preload("OptionGroups.Values").
		Preload("ChainingRelationships").
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs is the bulk lookup used when joining cart lines and collections
// against live catalog data. Lookups are chunked so arbitrarily large id
// sets never produce oversized IN clauses.
func (r *productRepository) FindByIDs(ids []uint) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	products := make([]model.Product, 0, len(ids))
	for start := 0; start < len(ids); start += r.lookupBatch {
		end := start + r.lookupBatch
		if end > len(ids) {
			end = len(ids)
		}

		var batch []model.Product
		if err := r.db.Where("id IN ?", ids[start:end]).Find(&batch).Error; err != nil {
			logger.Error("Failed to bulk-find products", err, map[string]interface{}{
				"batch_size": end - start,
			})
			return nil, err
		}
		products = append(products, batch...)
	}

	logger.Debug("Products bulk-found", map[string]interface{}{
		"requested": len(ids),
		"found":     len(products),
	})
	return products, nil
}

func (r *productRepository) FindAll(activeOnly bool) ([]model.Product, error) {
	var products []model.Product
	query := r.db.Order("display_order ASC, id ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"active_only": activeOnly,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	logger.Debug("Product updated", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

func (r *productRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	logger.Debug("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}
