package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/internal/app/service"
	"github.com/loomshop/loomshop-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddProductLineRequest struct {
	ProductID uint            `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity"`
	Selection model.Selection `json:"selection"`
}

type AddUpsellLineRequest struct {
	UpsellID uint                   `json:"upsell_id" binding:"required"`
	Quantity int                    `json:"quantity"`
	Items    model.UpsellSelections `json:"items"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type ReorderRequest struct {
	VariantIDs []string `json:"variant_ids" binding:"required"`
}

// GetCart returns the composed cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := middleware.GetUserID(c)

	// selected narrows the total to specific lines for checkout preview
	var selected []string
	if raw, exists := c.GetQueryArray("selected"); exists {
		selected = raw
	}

	cart, err := ctrl.cartService.ComposeCart(c.Request.Context(), userID, selected)
	if err != nil {
		log.Error("Failed to compose cart", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart": cart,
	})
}

// AddProductLine adds a configured product to the cart
// POST /api/v1/cart/products
func (ctrl *CartController) AddProductLine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := middleware.GetUserID(c)

	var req AddProductLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	line, err := ctrl.cartService.AddProductLine(c.Request.Context(), userID, req.ProductID, req.Quantity, req.Selection)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		case errors.Is(err, service.ErrIncompleteSelection):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Option selection is incomplete or invalid",
			})
		default:
			log.Error("Failed to add cart line", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to add to cart",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"line": line,
	})
}

// AddUpsellLine adds a configured bundle to the cart
// POST /api/v1/cart/upsells
func (ctrl *CartController) AddUpsellLine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := middleware.GetUserID(c)

	var req AddUpsellLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	line, err := ctrl.cartService.AddUpsellLine(c.Request.Context(), userID, req.UpsellID, req.Quantity, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUpsellNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Upsell not found",
			})
		case errors.Is(err, service.ErrUpsellMemberMismatch):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Selection references a product outside the bundle",
			})
		default:
			log.Error("Failed to add upsell line", err, map[string]interface{}{
				"user_id":   userID,
				"upsell_id": req.UpsellID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to add to cart",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"line": line,
	})
}

// UpdateQuantity changes a line's quantity; zero removes it
// PUT /api/v1/cart/lines/:variantId/quantity
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := middleware.GetUserID(c)
	variantID := c.Param("variantId")

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	if err := ctrl.cartService.UpdateQuantity(userID, variantID, req.Quantity); err != nil {
		if errors.Is(err, service.ErrCartLineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Cart line not found",
			})
			return
		}
		log.Error("Failed to update quantity", err, map[string]interface{}{
			"user_id":    userID,
			"variant_id": variantID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update quantity",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quantity updated",
	})
}

// RemoveLine removes one cart line
// DELETE /api/v1/cart/lines/:variantId
func (ctrl *CartController) RemoveLine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := middleware.GetUserID(c)
	variantID := c.Param("variantId")

	if err := ctrl.cartService.RemoveLine(userID, variantID); err != nil {
		if errors.Is(err, service.ErrCartLineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Cart line not found",
			})
			return
		}
		log.Error("Failed to remove cart line", err, map[string]interface{}{
			"user_id":    userID,
			"variant_id": variantID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove cart line",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart line removed",
	})
}

// ReorderLines rewrites line positions following the given variant order
// PUT /api/v1/cart/order
func (ctrl *CartController) ReorderLines(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := middleware.GetUserID(c)

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	if err := ctrl.cartService.ReorderLines(userID, req.VariantIDs); err != nil {
		if errors.Is(err, service.ErrCartLineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Cart line not found",
			})
			return
		}
		log.Error("Failed to reorder cart", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to reorder cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart reordered",
	})
}

// ClearCart removes every line
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID := middleware.GetUserID(c)

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		log.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}
