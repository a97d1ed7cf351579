package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/internal/app/repository"
	"github.com/loomshop/loomshop-backend/pkg/logger"
	"github.com/loomshop/loomshop-backend/pkg/redis"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductSlugExists = errors.New("product slug already exists")
)

func productCacheKey(id uint) string {
	return fmt.Sprintf("catalog:product:%d", id)
}

type ProductService interface {
	ListProducts(activeOnly bool) ([]model.Product, error)
	GetProductByID(ctx context.Context, id uint) (*model.Product, error)
	GetProductBySlug(slug string) (*model.Product, error)
	GetProductsByIDs(ids []uint) ([]model.Product, error)
	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, id uint) error
}

type productService struct {
	productRepo repository.ProductRepository
	cacheTTL    time.Duration
}

func NewProductService(productRepo repository.ProductRepository, cacheTTL time.Duration) ProductService {
	return &productService{
		productRepo: productRepo,
		cacheTTL:    cacheTTL,
	}
}

func (s *productService) ListProducts(activeOnly bool) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(activeOnly)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}
	return products, nil
}

// GetProductByID serves the storefront detail read. The full document,
// option groups and chaining relationships included, is cached; cache
// problems degrade to a database read.
func (s *productService) GetProductByID(ctx context.Context, id uint) (*model.Product, error) {
	var cached model.Product
	hit, err := redis.GetCachedDocument(ctx, productCacheKey(id), &cached)
	if err != nil {
		logger.Warn("Product cache read failed", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
	}
	if hit {
		return &cached, nil
	}

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if err := redis.SetCachedDocument(ctx, productCacheKey(id), product, s.cacheTTL); err != nil {
		logger.Warn("Product cache write failed", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
	}

	return product, nil
}

func (s *productService) GetProductBySlug(slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductsByIDs(ids []uint) ([]model.Product, error) {
	return s.productRepo.FindByIDs(ids)
}

func (s *productService) CreateProduct(ctx context.Context, product *model.Product) error {
	if existing, err := s.productRepo.FindBySlug(product.Slug); err == nil && existing != nil {
		return ErrProductSlugExists
	}

	product.Pricing = normalizeAuthoredPricing(product.Pricing)

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"slug": product.Slug,
		})
		return err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return nil
}

func (s *productService) UpdateProduct(ctx context.Context, product *model.Product) error {
	existing, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if product.Slug != existing.Slug {
		if other, err := s.productRepo.FindBySlug(product.Slug); err == nil && other != nil && other.ID != product.ID {
			return ErrProductSlugExists
		}
	}

	product.Pricing = normalizeAuthoredPricing(product.Pricing)

	if err := s.productRepo.Update(product); err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	redis.InvalidateDocument(ctx, productCacheKey(product.ID))
	return nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.productRepo.Delete(id); err != nil {
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	redis.InvalidateDocument(ctx, productCacheKey(id))
	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

// normalizeAuthoredPricing recomputes the sale price from the authored
// base price and discount. Admins never write SalePrice directly.
func normalizeAuthoredPricing(p model.PricingTriple) model.PricingTriple {
	p.BasePrice = Round2(p.BasePrice)
	if p.DiscountPercentage > 0 && p.DiscountPercentage < 100 {
		p.SalePrice = CharmPrice(p.BasePrice * (1 - p.DiscountPercentage/100))
	} else {
		p.SalePrice = 0
	}
	return p
}
