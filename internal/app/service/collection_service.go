package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/internal/app/repository"
	"github.com/loomshop/loomshop-backend/pkg/logger"
)

var (
	ErrCollectionNotFound   = errors.New("collection not found")
	ErrCollectionSlugExists = errors.New("collection slug already exists")
)

// CollectionDetail is a collection joined against the live catalog in the
// curated order; members that no longer resolve are dropped.
type CollectionDetail struct {
	Collection *model.Collection `json:"collection"`
	Products   []model.Product   `json:"products"`
}

type CollectionService interface {
	ListCollections(activeOnly bool) ([]model.Collection, error)
	GetCollectionBySlug(slug string) (*CollectionDetail, error)
	GetCollectionByID(id uint) (*CollectionDetail, error)
	CreateCollection(collection *model.Collection) error
	UpdateCollection(collection *model.Collection) error
	DeleteCollection(id uint) error
}

type collectionService struct {
	collectionRepo repository.CollectionRepository
	productRepo    repository.ProductRepository
}

func NewCollectionService(collectionRepo repository.CollectionRepository, productRepo repository.ProductRepository) CollectionService {
	return &collectionService{
		collectionRepo: collectionRepo,
		productRepo:    productRepo,
	}
}

func (s *collectionService) ListCollections(activeOnly bool) ([]model.Collection, error) {
	collections, err := s.collectionRepo.FindAll(activeOnly)
	if err != nil {
		logger.Error("Failed to list collections", err)
		return nil, err
	}
	return collections, nil
}

func (s *collectionService) GetCollectionBySlug(slug string) (*CollectionDetail, error) {
	collection, err := s.collectionRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	return s.resolveMembers(collection)
}

func (s *collectionService) GetCollectionByID(id uint) (*CollectionDetail, error) {
	collection, err := s.collectionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	return s.resolveMembers(collection)
}

func (s *collectionService) resolveMembers(collection *model.Collection) (*CollectionDetail, error) {
	ids := make([]uint, 0, len(collection.ProductIDs))
	for _, id := range collection.ProductIDs {
		ids = append(ids, uint(id))
	}

	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*model.Product, len(products))
	for i := range products {
		if products[i].IsActive {
			byID[products[i].ID] = &products[i]
		}
	}

	ordered := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := byID[id]; ok {
			ordered = append(ordered, *product)
		}
	}

	return &CollectionDetail{
		Collection: collection,
		Products:   ordered,
	}, nil
}

func (s *collectionService) CreateCollection(collection *model.Collection) error {
	if existing, err := s.collectionRepo.FindBySlug(collection.Slug); err == nil && existing != nil {
		return ErrCollectionSlugExists
	}

	if err := s.collectionRepo.Create(collection); err != nil {
		return err
	}

	logger.Info("Collection created", map[string]interface{}{
		"collection_id": collection.ID,
		"slug":          collection.Slug,
	})
	return nil
}

func (s *collectionService) UpdateCollection(collection *model.Collection) error {
	existing, err := s.collectionRepo.FindByID(collection.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCollectionNotFound
		}
		return err
	}

	if collection.Slug != existing.Slug {
		if other, err := s.collectionRepo.FindBySlug(collection.Slug); err == nil && other != nil && other.ID != collection.ID {
			return ErrCollectionSlugExists
		}
	}

	return s.collectionRepo.Update(collection)
}

func (s *collectionService) DeleteCollection(id uint) error {
	if _, err := s.collectionRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCollectionNotFound
		}
		return err
	}
	return s.collectionRepo.Delete(id)
}
