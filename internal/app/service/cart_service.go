package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/internal/app/repository"
	"github.com/loomshop/loomshop-backend/pkg/logger"
)

var (
	ErrCartLineNotFound     = errors.New("cart line not found")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrIncompleteSelection  = errors.New("option selection is incomplete or invalid")
	ErrUpsellMemberMismatch = errors.New("selection references a product outside the bundle")
)

// ComposedLine is one cart line joined against the live catalog. Product
// is set for product lines, Upsell for bundle lines; exactly one is
// non-nil.
type ComposedLine struct {
	Line      model.CartLine        `json:"line"`
	Product   *model.Product        `json:"product,omitempty"`
	Upsell    *model.Upsell         `json:"upsell,omitempty"`
	Members   []model.UpsellProduct `json:"members,omitempty"`
	UnitPrice float64               `json:"unit_price"`
	LineTotal float64               `json:"line_total"`
}

// ComposedCart is the storefront cart view. Lines whose catalog document
// no longer exists or is inactive are dropped, not errored. Total covers
// the selected lines only and is rounded once.
type ComposedCart struct {
	Lines []ComposedLine `json:"lines"`
	Total float64        `json:"total"`
}

type CartService interface {
	AddProductLine(ctx context.Context, userID, productID uint, quantity int, sel model.Selection) (*model.CartLine, error)
	AddUpsellLine(ctx context.Context, userID, upsellID uint, quantity int, items model.UpsellSelections) (*model.CartLine, error)
	UpdateQuantity(userID uint, variantID string, quantity int) error
	RemoveLine(userID uint, variantID string) error
	ReorderLines(userID uint, variantIDs []string) error
	ClearCart(userID uint) error
	ComposeCart(ctx context.Context, userID uint, selectedVariantIDs []string) (*ComposedCart, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	upsellRepo  repository.UpsellRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, upsellRepo repository.UpsellRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		upsellRepo:  upsellRepo,
	}
}

func (s *cartService) AddProductLine(ctx context.Context, userID, productID uint, quantity int, sel model.Selection) (*model.CartLine, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	if len(product.OptionGroups) > 0 {
		res := ResolveSelectable(product.OptionGroups, product.ChainingRelationships, product.ChainingEnabled, sel)
		if !res.Complete || len(res.Invalid) > 0 {
			return nil, ErrIncompleteSelection
		}
	}

	if quantity <= 0 {
		quantity = 1
	}

	// an identical configuration already in the cart just gains quantity
	existing, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		line := &existing[i]
		if line.Kind != model.CartLineProduct || line.ProductID == nil || *line.ProductID != productID {
			continue
		}
		if !selectionsEqual(line.SelectedOptions, sel) {
			continue
		}
		line.Quantity += quantity
		if err := s.cartRepo.Update(line); err != nil {
			return nil, err
		}
		return line, nil
	}

	position, err := s.cartRepo.MaxPosition(userID)
	if err != nil {
		return nil, err
	}

	line := &model.CartLine{
		UserID:          userID,
		Kind:            model.CartLineProduct,
		ProductID:       &productID,
		VariantID:       uuid.NewString(),
		Position:        position + 1,
		Quantity:        quantity,
		SelectedOptions: sel,
	}
	if err := s.cartRepo.Create(line); err != nil {
		return nil, err
	}

	logger.Info("Cart line added", map[string]interface{}{
		"user_id":    userID,
		"variant_id": line.VariantID,
		"product_id": productID,
	})
	return line, nil
}

func (s *cartService) AddUpsellLine(ctx context.Context, userID, upsellID uint, quantity int, items model.UpsellSelections) (*model.CartLine, error) {
	upsell, err := s.upsellRepo.FindByID(upsellID)
	if err != nil {
		return nil, ErrUpsellNotFound
	}

	memberIDs := make(map[uint]bool, len(upsell.Products))
	for _, member := range upsell.Products {
		memberIDs[member.ProductID] = true
	}
	for _, item := range items {
		if !memberIDs[item.ProductID] {
			return nil, ErrUpsellMemberMismatch
		}
	}

	if quantity <= 0 {
		quantity = 1
	}

	position, err := s.cartRepo.MaxPosition(userID)
	if err != nil {
		return nil, err
	}

	line := &model.CartLine{
		UserID:      userID,
		Kind:        model.CartLineUpsell,
		UpsellID:    &upsellID,
		VariantID:   uuid.NewString(),
		Position:    position + 1,
		Quantity:    quantity,
		UpsellItems: items,
	}
	if err := s.cartRepo.Create(line); err != nil {
		return nil, err
	}

	logger.Info("Cart line added", map[string]interface{}{
		"user_id":    userID,
		"variant_id": line.VariantID,
		"upsell_id":  upsellID,
	})
	return line, nil
}

func (s *cartService) UpdateQuantity(userID uint, variantID string, quantity int) error {
	line, err := s.cartRepo.FindByVariantID(userID, variantID)
	if err != nil {
		return ErrCartLineNotFound
	}
	if quantity <= 0 {
		return s.cartRepo.Delete(line.ID)
	}
	line.Quantity = quantity
	return s.cartRepo.Update(line)
}

func (s *cartService) RemoveLine(userID uint, variantID string) error {
	line, err := s.cartRepo.FindByVariantID(userID, variantID)
	if err != nil {
		return ErrCartLineNotFound
	}
	return s.cartRepo.Delete(line.ID)
}

// ReorderLines reassigns positions following the given variant order.
// Variant ids not in the list keep their position; an unknown id rolls
// the whole reorder back.
func (s *cartService) ReorderLines(userID uint, variantIDs []string) error {
	if err := s.cartRepo.ReorderPositions(userID, variantIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartLineNotFound
		}
		return err
	}
	return nil
}

func (s *cartService) ClearCart(userID uint) error {
	return s.cartRepo.DeleteByUserID(userID)
}

// ComposeCart joins the user's lines against the live catalog. Lines
// pointing at a deleted or deactivated document are dropped silently.
// Bundle lines additionally drop members that cannot be rendered; a
// bundle left with no member is dropped whole. When selectedVariantIDs
// is nil every surviving line counts toward the total; otherwise only
// the listed ones do, though all lines are still returned for display.
func (s *cartService) ComposeCart(ctx context.Context, userID uint, selectedVariantIDs []string) (*ComposedCart, error) {
	lines, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	var productIDs, upsellIDs []uint
	for _, line := range lines {
		switch line.Kind {
		case model.CartLineProduct:
			if line.ProductID != nil {
				productIDs = append(productIDs, *line.ProductID)
			}
		case model.CartLineUpsell:
			if line.UpsellID != nil {
				upsellIDs = append(upsellIDs, *line.UpsellID)
			}
		}
	}

	products, err := s.productRepo.FindByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	upsells, err := s.upsellRepo.FindByIDs(upsellIDs)
	if err != nil {
		return nil, err
	}

	productByID := make(map[uint]*model.Product, len(products))
	for i := range products {
		if products[i].IsActive {
			productByID[products[i].ID] = &products[i]
		}
	}
	upsellByID := make(map[uint]*model.Upsell, len(upsells))
	for i := range upsells {
		if upsells[i].IsActive {
			upsellByID[upsells[i].ID] = &upsells[i]
		}
	}

	var selected map[string]bool
	if selectedVariantIDs != nil {
		selected = make(map[string]bool, len(selectedVariantIDs))
		for _, id := range selectedVariantIDs {
			selected[id] = true
		}
	}

	cart := &ComposedCart{Lines: make([]ComposedLine, 0, len(lines))}
	lookup := PricingLookup{
		Products: make(map[uint]model.PricingTriple),
		Upsells:  make(map[uint]model.PricingTriple),
	}
	var countedLines []model.CartLine

	dropped := 0
	for _, line := range lines {
		composed := ComposedLine{Line: line}

		switch line.Kind {
		case model.CartLineProduct:
			if line.ProductID == nil {
				dropped++
				continue
			}
			product, ok := productByID[*line.ProductID]
			if !ok {
				dropped++
				continue
			}
			composed.Product = product
			composed.UnitPrice = product.Pricing.Effective()
			lookup.Products[product.ID] = product.Pricing
		case model.CartLineUpsell:
			if line.UpsellID == nil {
				dropped++
				continue
			}
			upsell, ok := upsellByID[*line.UpsellID]
			if !ok {
				dropped++
				continue
			}
			members := joinUpsellMembers(upsell, line.UpsellItems)
			if len(members) == 0 {
				dropped++
				continue
			}
			composed.Upsell = upsell
			composed.Members = members
			composed.UnitPrice = upsell.Pricing.Effective()
			lookup.Upsells[upsell.ID] = upsell.Pricing
		default:
			dropped++
			continue
		}

		quantity := line.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		composed.LineTotal = Round2(composed.UnitPrice * float64(quantity))
		cart.Lines = append(cart.Lines, composed)

		if selected == nil || selected[line.VariantID] {
			countedLines = append(countedLines, line)
		}
	}

	cart.Total = CartTotal(countedLines, lookup)

	if dropped > 0 {
		logger.Debug("Composed cart dropped dangling lines", map[string]interface{}{
			"user_id": userID,
			"dropped": dropped,
		})
	}

	return cart, nil
}

// joinUpsellMembers resolves a bundle line's sub-products against the
// current membership. Lines with recorded item selections are narrowed
// to those products; members without an image have nothing to render
// and are dropped.
func joinUpsellMembers(upsell *model.Upsell, items model.UpsellSelections) []model.UpsellProduct {
	wanted := make(map[uint]bool, len(items))
	for _, item := range items {
		wanted[item.ProductID] = true
	}

	var members []model.UpsellProduct
	for _, member := range upsell.Products {
		if len(wanted) > 0 && !wanted[member.ProductID] {
			continue
		}
		if !member.Product.IsActive || member.Product.MainImageURL == "" {
			continue
		}
		members = append(members, member)
	}
	return members
}

func selectionsEqual(a, b model.Selection) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
