package repository

import (
	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/pkg/logger"
	"gorm.io/gorm"
)

type CollectionRepository interface {
	Create(collection *model.Collection) error
	FindByID(id uint) (*model.Collection, error)
	FindBySlug(slug string) (*model.Collection, error)
	FindAll(activeOnly bool) ([]model.Collection, error)
	Update(collection *model.Collection) error
	Delete(id uint) error
}

type collectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(collection *model.Collection) error {
	if err := r.db.Create(collection).Error; err != nil {
		logger.Error("Failed to create collection", err, map[string]interface{}{
			"name": collection.Name,
			"slug": collection.Slug,
		})
		return err
	}

	logger.Debug("Collection created", map[string]interface{}{
		"collection_id": collection.ID,
		"slug":          collection.Slug,
	})
	return nil
}

func (r *collectionRepository) FindByID(id uint) (*model.Collection, error) {
	var collection model.Collection
	if err := r.db.First(&collection, id).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepository) FindBySlug(slug string) (*model.Collection, error) {
	var collection model.Collection
	if err := r.db.Where("slug = ?", slug).First(&collection).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepository) FindAll(activeOnly bool) ([]model.Collection, error) {
	var collections []model.Collection
	query := r.db.Order("display_order ASC, id ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&collections).Error; err != nil {
		logger.Error("Failed to list collections", err, map[string]interface{}{
			"active_only": activeOnly,
		})
		return nil, err
	}
	return collections, nil
}

func (r *collectionRepository) Update(collection *model.Collection) error {
	if err := r.db.Save(collection).Error; err != nil {
		logger.Error("Failed to update collection", err, map[string]interface{}{
			"collection_id": collection.ID,
		})
		return err
	}
	return nil
}

func (r *collectionRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Collection{}, id).Error; err != nil {
		logger.Error("Failed to delete collection", err, map[string]interface{}{
			"collection_id": id,
		})
		return err
	}
	return nil
}
