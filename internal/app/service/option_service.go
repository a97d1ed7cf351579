package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/internal/app/repository"
	"github.com/loomshop/loomshop-backend/pkg/logger"
	"github.com/loomshop/loomshop-backend/pkg/redis"
)

var (
	ErrOptionGroupNotFound = errors.New("option group not found")
	ErrOptionValueNotFound = errors.New("option value not found")
	ErrOptionGroupMismatch = errors.New("option group belongs to a different product")
	ErrInvalidChaining     = errors.New("invalid chaining relationship")
)

type OptionService interface {
	CreateGroup(ctx context.Context, group *model.OptionGroup) error
	UpdateGroup(ctx context.Context, group *model.OptionGroup) error
	DeleteGroup(ctx context.Context, id uint) error

	CreateValue(ctx context.Context, value *model.OptionValue) error
	UpdateValue(ctx context.Context, value *model.OptionValue) error
	DeleteValue(ctx context.Context, id uint) error

	CreateRelationship(ctx context.Context, rel *model.ChainingRelationship) error
	UpdateRelationship(ctx context.Context, rel *model.ChainingRelationship) error
	DeleteRelationship(ctx context.Context, id uint) error

	ResolveProduct(ctx context.Context, productID uint, sel model.Selection) (*Resolution, error)
	SelectProductOption(ctx context.Context, productID uint, sel model.Selection, groupID, optionID uint) (model.Selection, *Resolution, error)
}

type optionService struct {
	optionRepo  repository.OptionRepository
	productRepo repository.ProductRepository
}

func NewOptionService(optionRepo repository.OptionRepository, productRepo repository.ProductRepository) OptionService {
	return &optionService{
		optionRepo:  optionRepo,
		productRepo: productRepo,
	}
}

func (s *optionService) CreateGroup(ctx context.Context, group *model.OptionGroup) error {
	if _, err := s.productRepo.FindByID(group.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.optionRepo.CreateGroup(group); err != nil {
		return err
	}

	redis.InvalidateDocument(ctx, productCacheKey(group.ProductID))
	return nil
}

func (s *optionService) UpdateGroup(ctx context.Context, group *model.OptionGroup) error {
	existing, err := s.optionRepo.FindGroupByID(group.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOptionGroupNotFound
		}
		return err
	}
	if group.ProductID != 0 && group.ProductID != existing.ProductID {
		return ErrOptionGroupMismatch
	}
	group.ProductID = existing.ProductID

	if err := s.optionRepo.UpdateGroup(group); err != nil {
		return err
	}

	redis.InvalidateDocument(ctx, productCacheKey(existing.ProductID))
	return nil
}

func (s *optionService) DeleteGroup(ctx context.Context, id uint) error {
	existing, err := s.optionRepo.FindGroupByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOptionGroupNotFound
		}
		return err
	}

	if err := s.optionRepo.DeleteGroup(id); err != nil {
		return err
	}

	redis.InvalidateDocument(ctx, productCacheKey(existing.ProductID))
	return nil
}

func (s *optionService) CreateValue(ctx context.Context, value *model.OptionValue) error {
	group, err := s.optionRepo.FindGroupByID(value.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOptionGroupNotFound
		}
		return err
	}

	if err := s.optionRepo.CreateValue(value); err != nil {
		return err
	}

	redis.InvalidateDocument(ctx, productCacheKey(group.ProductID))
	return nil
}

func (s *optionService) UpdateValue(ctx context.Context, value *model.OptionValue) error {
	existing, err := s.optionRepo.FindValueByID(value.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOptionValueNotFound
		}
		return err
	}
	if value.GroupID != 0 && value.GroupID != existing.GroupID {
		return ErrOptionGroupMismatch
	}
	value.GroupID = existing.GroupID

	if err := s.optionRepo.UpdateValue(value); err != nil {
		return err
	}

	s.invalidateGroupProduct(ctx, existing.GroupID)
	return nil
}

func (s *optionService) DeleteValue(ctx context.Context, id uint) error {
	existing, err := s.optionRepo.FindValueByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOptionValueNotFound
		}
		return err
	}

	if err := s.optionRepo.DeleteValue(id); err != nil {
		return err
	}

	s.invalidateGroupProduct(ctx, existing.GroupID)
	return nil
}

// validateRelationship checks that both groups exist, belong to the
// relationship's product, and differ. Constraint option ids are not
// checked against the child group: the resolver treats unknown ids as
// never-matching, so stale constraints degrade instead of blocking
// admin saves.
func (s *optionService) validateRelationship(rel *model.ChainingRelationship) error {
	if rel.ParentGroupID == rel.ChildGroupID {
		return ErrInvalidChaining
	}

	parent, err := s.optionRepo.FindGroupByID(rel.ParentGroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOptionGroupNotFound
		}
		return err
	}
	child, err := s.optionRepo.FindGroupByID(rel.ChildGroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOptionGroupNotFound
		}
		return err
	}

	if parent.ProductID != rel.ProductID || child.ProductID != rel.ProductID {
		return ErrOptionGroupMismatch
	}
	return nil
}

func (s *optionService) CreateRelationship(ctx context.Context, rel *model.ChainingRelationship) error {
	if err := s.validateRelationship(rel); err != nil {
		return err
	}

	if err := s.optionRepo.CreateRelationship(rel); err != nil {
		return err
	}

	redis.InvalidateDocument(ctx, productCacheKey(rel.ProductID))
	return nil
}

func (s *optionService) UpdateRelationship(ctx context.Context, rel *model.ChainingRelationship) error {
	existing, err := s.optionRepo.FindRelationshipByID(rel.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidChaining
		}
		return err
	}
	rel.ProductID = existing.ProductID

	if err := s.validateRelationship(rel); err != nil {
		return err
	}

	if err := s.optionRepo.UpdateRelationship(rel); err != nil {
		return err
	}

	redis.InvalidateDocument(ctx, productCacheKey(rel.ProductID))
	return nil
}

func (s *optionService) DeleteRelationship(ctx context.Context, id uint) error {
	existing, err := s.optionRepo.FindRelationshipByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidChaining
		}
		return err
	}

	if err := s.optionRepo.DeleteRelationship(id); err != nil {
		return err
	}

	redis.InvalidateDocument(ctx, productCacheKey(existing.ProductID))
	return nil
}

// ResolveProduct computes the selectable state for a product given the
// shopper's current selection.
func (s *optionService) ResolveProduct(ctx context.Context, productID uint, sel model.Selection) (*Resolution, error) {
	product, groups, rels, err := s.loadResolverInput(ctx, productID)
	if err != nil {
		return nil, err
	}

	res := ResolveSelectable(groups, rels, product.ChainingEnabled, sel)
	return &res, nil
}

// SelectProductOption applies one pick, cascades, and returns the updated
// selection together with its resolution.
func (s *optionService) SelectProductOption(ctx context.Context, productID uint, sel model.Selection, groupID, optionID uint) (model.Selection, *Resolution, error) {
	product, groups, rels, err := s.loadResolverInput(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	var target *model.OptionGroup
	for i := range groups {
		if groups[i].ID == groupID {
			target = &groups[i]
			break
		}
	}
	if target == nil {
		return nil, nil, ErrOptionGroupNotFound
	}

	found := false
	for _, value := range target.Values {
		if value.ID == optionID {
			found = true
			break
		}
	}
	if !found {
		return nil, nil, ErrOptionValueNotFound
	}

	next := ApplySelection(groups, rels, product.ChainingEnabled, sel, groupID, optionID)
	res := ResolveSelectable(groups, rels, product.ChainingEnabled, next)

	logger.Debug("Option selected", map[string]interface{}{
		"product_id": productID,
		"group_id":   groupID,
		"option_id":  optionID,
		"complete":   res.Complete,
	})

	return next, &res, nil
}

// loadResolverInput reads the product through the cached detail path so
// storefront resolution rides the same document the detail page shows.
func (s *optionService) loadResolverInput(ctx context.Context, productID uint) (*model.Product, []model.OptionGroup, []model.ChainingRelationship, error) {
	var cached model.Product
	hit, err := redis.GetCachedDocument(ctx, productCacheKey(productID), &cached)
	if err == nil && hit {
		return &cached, cached.OptionGroups, cached.ChainingRelationships, nil
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrProductNotFound
		}
		return nil, nil, nil, err
	}
	return product, product.OptionGroups, product.ChainingRelationships, nil
}

func (s *optionService) invalidateGroupProduct(ctx context.Context, groupID uint) {
	group, err := s.optionRepo.FindGroupByID(groupID)
	if err != nil {
		return
	}
	redis.InvalidateDocument(ctx, productCacheKey(group.ProductID))
}
