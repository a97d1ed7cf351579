package service

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/internal/app/repository"
	"github.com/loomshop/loomshop-backend/pkg/logger"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderInvalidStatus = errors.New("invalid order status")
	ErrOrderAccessDenied  = errors.New("order access denied")
)

// OrderNotifier receives order lifecycle events. The websocket hub
// implements it for the admin live feed; a nil notifier is a no-op.
type OrderNotifier interface {
	NotifyOrderEvent(event string, order *model.Order)
}

type OrderService interface {
	Checkout(ctx context.Context, userID uint, selectedVariantIDs []string, shippingAddress string) (*model.Order, error)
	GetOrderByID(userID uint, isAdmin bool, orderID uint) (*model.Order, error)
	ListUserOrders(userID uint) ([]model.Order, error)
	ListAllOrders(status *model.OrderStatus) ([]model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	cartService CartService
	notifier    OrderNotifier
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, cartService CartService, notifier OrderNotifier) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		cartService: cartService,
		notifier:    notifier,
	}
}

// Checkout turns the selected composed cart lines into an order. Lines are
// snapshotted with their name, unit price and option choices so catalog
// edits never rewrite history; the ordered lines are then removed from the
// cart while unselected ones stay.
func (s *orderService) Checkout(ctx context.Context, userID uint, selectedVariantIDs []string, shippingAddress string) (*model.Order, error) {
	cart, err := s.cartService.ComposeCart(ctx, userID, selectedVariantIDs)
	if err != nil {
		return nil, err
	}

	var selected map[string]bool
	if selectedVariantIDs != nil {
		selected = make(map[string]bool, len(selectedVariantIDs))
		for _, id := range selectedVariantIDs {
			selected[id] = true
		}
	}

	var items []model.OrderItem
	var orderedVariantIDs []string
	var countedLines []model.CartLine
	lookup := PricingLookup{
		Products: make(map[uint]model.PricingTriple),
		Upsells:  make(map[uint]model.PricingTriple),
	}

	for _, composed := range cart.Lines {
		line := composed.Line
		if selected != nil && !selected[line.VariantID] {
			continue
		}

		item := model.OrderItem{
			Kind:      line.Kind,
			ProductID: line.ProductID,
			UpsellID:  line.UpsellID,
			VariantID: line.VariantID,
			Position:  line.Position,
			Quantity:  line.Quantity,
			UnitPrice: composed.UnitPrice,
		}
		switch {
		case composed.Product != nil:
			item.Name = composed.Product.Name
			item.OptionSnapshot = marshalSnapshot(line.SelectedOptions)
			lookup.Products[composed.Product.ID] = composed.Product.Pricing
		case composed.Upsell != nil:
			item.Name = composed.Upsell.Name
			item.OptionSnapshot = marshalSnapshot(line.UpsellItems)
			lookup.Upsells[composed.Upsell.ID] = composed.Upsell.Pricing
		}

		items = append(items, item)
		countedLines = append(countedLines, line)
		orderedVariantIDs = append(orderedVariantIDs, line.VariantID)
	}

	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	order := &model.Order{
		UserID:          userID,
		TotalAmount:     CartTotal(countedLines, lookup),
		Status:          model.OrderStatusPending,
		ShippingAddress: shippingAddress,
		Items:           items,
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteByVariantIDs(userID, orderedVariantIDs); err != nil {
		// the order exists; a stale cart line is recoverable
		logger.Warn("Failed to clear ordered cart lines", map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.TotalAmount,
		"items":    len(items),
	})

	if s.notifier != nil {
		s.notifier.NotifyOrderEvent("order.created", order)
	}

	return order, nil
}

func (s *orderService) GetOrderByID(userID uint, isAdmin bool, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

func (s *orderService) ListUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) ListAllOrders(status *model.OrderStatus) ([]model.Order, error) {
	if status != nil && !model.ValidOrderStatus(*status) {
		return nil, ErrOrderInvalidStatus
	}
	return s.orderRepo.FindAll(status)
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	if !model.ValidOrderStatus(status) {
		return nil, ErrOrderInvalidStatus
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	if s.notifier != nil {
		s.notifier.NotifyOrderEvent("order.status_changed", order)
	}

	return order, nil
}

func marshalSnapshot(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
