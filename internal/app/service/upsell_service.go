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
	ErrUpsellNotFound    = errors.New("upsell not found")
	ErrUpsellEmptyBundle = errors.New("upsell has no member products")
)

func upsellCacheKey(id uint) string {
	return fmt.Sprintf("catalog:upsell:%d", id)
}

// UpsellDetail is the storefront read of a bundle: the document plus an
// upgrade banner per member, keyed by the product the shopper is viewing.
type UpsellDetail struct {
	Upsell      *model.Upsell              `json:"upsell"`
	Comparisons map[uint]*UpsellComparison `json:"comparisons,omitempty"`
}

type UpsellService interface {
	ListUpsells(activeOnly bool) ([]model.Upsell, error)
	GetUpsellByID(ctx context.Context, id uint) (*model.Upsell, error)
	GetUpsellDetail(ctx context.Context, id uint) (*UpsellDetail, error)
	CreateUpsell(ctx context.Context, upsell *model.Upsell, productIDs []uint) error
	UpdateUpsell(ctx context.Context, upsell *model.Upsell, productIDs []uint) error
	DeleteUpsell(ctx context.Context, id uint) error
	RepriceAll(ctx context.Context) (int, error)
}

type upsellService struct {
	upsellRepo  repository.UpsellRepository
	productRepo repository.ProductRepository
	cacheTTL    time.Duration
}

func NewUpsellService(upsellRepo repository.UpsellRepository, productRepo repository.ProductRepository, cacheTTL time.Duration) UpsellService {
	return &upsellService{
		upsellRepo:  upsellRepo,
		productRepo: productRepo,
		cacheTTL:    cacheTTL,
	}
}

func (s *upsellService) ListUpsells(activeOnly bool) ([]model.Upsell, error) {
	upsells, err := s.upsellRepo.FindAll(activeOnly)
	if err != nil {
		logger.Error("Failed to list upsells", err)
		return nil, err
	}
	return upsells, nil
}

func (s *upsellService) GetUpsellByID(ctx context.Context, id uint) (*model.Upsell, error) {
	var cached model.Upsell
	hit, err := redis.GetCachedDocument(ctx, upsellCacheKey(id), &cached)
	if err != nil {
		logger.Warn("Upsell cache read failed", map[string]interface{}{
			"upsell_id": id,
			"error":     err.Error(),
		})
	}
	if hit {
		return &cached, nil
	}

	upsell, err := s.upsellRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUpsellNotFound
		}
		return nil, err
	}

	if err := redis.SetCachedDocument(ctx, upsellCacheKey(id), upsell, s.cacheTTL); err != nil {
		logger.Warn("Upsell cache write failed", map[string]interface{}{
			"upsell_id": id,
			"error":     err.Error(),
		})
	}

	return upsell, nil
}

func (s *upsellService) GetUpsellDetail(ctx context.Context, id uint) (*UpsellDetail, error) {
	upsell, err := s.GetUpsellByID(ctx, id)
	if err != nil {
		return nil, err
	}

	comparisons := make(map[uint]*UpsellComparison, len(upsell.Products))
	for _, member := range upsell.Products {
		cmp := DeriveUpsellComparison(member.Product.Pricing.Effective(), upsell.Pricing.Effective())
		if cmp != nil {
			comparisons[member.ProductID] = cmp
		}
	}

	return &UpsellDetail{
		Upsell:      upsell,
		Comparisons: comparisons,
	}, nil
}

func (s *upsellService) CreateUpsell(ctx context.Context, upsell *model.Upsell, productIDs []uint) error {
	if len(productIDs) == 0 {
		return ErrUpsellEmptyBundle
	}

	members, triple, err := s.deriveMembers(productIDs, upsell.Pricing.DiscountPercentage)
	if err != nil {
		return err
	}
	upsell.Pricing = triple
	upsell.Products = members

	if err := s.upsellRepo.Create(upsell); err != nil {
		logger.Error("Failed to create upsell", err, map[string]interface{}{
			"name": upsell.Name,
		})
		return err
	}

	logger.Info("Upsell created", map[string]interface{}{
		"upsell_id":  upsell.ID,
		"base_price": upsell.Pricing.BasePrice,
		"members":    len(productIDs),
	})
	return nil
}

func (s *upsellService) UpdateUpsell(ctx context.Context, upsell *model.Upsell, productIDs []uint) error {
	existing, err := s.upsellRepo.FindByID(upsell.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUpsellNotFound
		}
		return err
	}

	// nil means keep the current membership; empty is an explicit error
	if productIDs == nil {
		productIDs = make([]uint, 0, len(existing.Products))
		for _, member := range existing.Products {
			productIDs = append(productIDs, member.ProductID)
		}
	}
	if len(productIDs) == 0 {
		return ErrUpsellEmptyBundle
	}

	members, triple, err := s.deriveMembers(productIDs, upsell.Pricing.DiscountPercentage)
	if err != nil {
		return err
	}
	upsell.Pricing = triple

	if err := s.upsellRepo.Update(upsell); err != nil {
		return err
	}
	if err := s.upsellRepo.ReplaceProducts(upsell.ID, members); err != nil {
		return err
	}

	redis.InvalidateDocument(ctx, upsellCacheKey(upsell.ID))
	return nil
}

func (s *upsellService) DeleteUpsell(ctx context.Context, id uint) error {
	if _, err := s.upsellRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUpsellNotFound
		}
		return err
	}

	if err := s.upsellRepo.Delete(id); err != nil {
		return err
	}

	redis.InvalidateDocument(ctx, upsellCacheKey(id))
	logger.Info("Upsell deleted", map[string]interface{}{
		"upsell_id": id,
	})
	return nil
}

// deriveMembers resolves the member products in the requested order and
// aggregates their base prices into the bundle's price pair. Unknown
// product ids fail the whole write.
func (s *upsellService) deriveMembers(productIDs []uint, discount float64) ([]model.UpsellProduct, model.PricingTriple, error) {
	products, err := s.productRepo.FindByIDs(productIDs)
	if err != nil {
		return nil, model.PricingTriple{}, err
	}

	byID := make(map[uint]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	members := make([]model.UpsellProduct, 0, len(productIDs))
	basePrices := make([]float64, 0, len(productIDs))
	for position, id := range productIDs {
		product, ok := byID[id]
		if !ok {
			return nil, model.PricingTriple{}, ErrProductNotFound
		}
		members = append(members, model.UpsellProduct{
			ProductID: id,
			Position:  position,
		})
		basePrices = append(basePrices, product.Pricing.BasePrice)
	}

	return members, AggregateBundlePrice(basePrices, discount), nil
}

// RepriceAll recomputes the derived pricing of every bundle against the
// current member base prices. The nightly scheduler runs this so price
// edits on member products propagate even without an upsell write.
func (s *upsellService) RepriceAll(ctx context.Context) (int, error) {
	upsells, err := s.upsellRepo.FindAll(false)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range upsells {
		upsell := &upsells[i]

		basePrices := make([]float64, 0, len(upsell.Products))
		for _, member := range upsell.Products {
			basePrices = append(basePrices, member.Product.Pricing.BasePrice)
		}

		triple := AggregateBundlePrice(basePrices, upsell.Pricing.DiscountPercentage)
		if triple == upsell.Pricing {
			continue
		}

		upsell.Pricing = triple
		if err := s.upsellRepo.Update(upsell); err != nil {
			logger.Error("Failed to reprice upsell", err, map[string]interface{}{
				"upsell_id": upsell.ID,
			})
			return changed, err
		}
		redis.InvalidateDocument(ctx, upsellCacheKey(upsell.ID))
		changed++
	}

	if changed > 0 {
		logger.Info("Upsells repriced", map[string]interface{}{
			"changed": changed,
		})
	}
	return changed, nil
}
