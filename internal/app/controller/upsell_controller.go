package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/internal/app/service"
	"github.com/loomshop/loomshop-backend/internal/middleware"
	"github.com/loomshop/loomshop-backend/pkg/logger"
)

type UpsellController struct {
	upsellService service.UpsellService
}

func NewUpsellController(upsellService service.UpsellService) *UpsellController {
	return &UpsellController{
		upsellService: upsellService,
	}
}

type UpsellRequest struct {
	Name               string  `json:"name" binding:"required"`
	Description        string  `json:"description"`
	ImageURL           string  `json:"image_url"`
	DiscountPercentage float64 `json:"discount_percentage"`
	IsActive           *bool   `json:"is_active"`
	ProductIDs         []uint  `json:"product_ids"`
}

// GetAllUpsells returns the bundle listing
// GET /api/v1/upsells
func (ctrl *UpsellController) GetAllUpsells(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	activeOnly := !(c.Query("all") == "true" && middleware.IsAdmin(c))

	upsells, err := ctrl.upsellService.ListUpsells(activeOnly)
	if err != nil {
		log.Error("Failed to fetch upsells", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch upsells",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upsells": upsells,
		"count":   len(upsells),
	})
}

// GetUpsellByID returns a bundle with its savings comparison
// GET /api/v1/upsells/:id
func (ctrl *UpsellController) GetUpsellByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := ctrl.upsellService.GetUpsellDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUpsellNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Upsell not found",
			})
			return
		}
		log.Error("Failed to fetch upsell", err, map[string]interface{}{
			"upsell_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch upsell",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upsell":      detail.Upsell,
		"comparisons": detail.Comparisons,
	})
}

// CreateUpsell creates a bundle (admin only)
// POST /api/v1/admin/upsells
func (ctrl *UpsellController) CreateUpsell(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpsellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	upsell := &model.Upsell{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Pricing:     model.PricingTriple{DiscountPercentage: req.DiscountPercentage},
		IsActive:    true,
	}
	if req.IsActive != nil {
		upsell.IsActive = *req.IsActive
	}

	if err := ctrl.upsellService.CreateUpsell(c.Request.Context(), upsell, req.ProductIDs); err != nil {
		ctrl.respondUpsellError(c, log, err, "Failed to create upsell")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"upsell": upsell,
	})
}

// UpdateUpsell updates a bundle; omitting product_ids keeps its members (admin only)
// PUT /api/v1/admin/upsells/:id
func (ctrl *UpsellController) UpdateUpsell(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpsellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	upsell := &model.Upsell{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Pricing:     model.PricingTriple{DiscountPercentage: req.DiscountPercentage},
		IsActive:    true,
	}
	if req.IsActive != nil {
		upsell.IsActive = *req.IsActive
	}

	if err := ctrl.upsellService.UpdateUpsell(c.Request.Context(), upsell, req.ProductIDs); err != nil {
		ctrl.respondUpsellError(c, log, err, "Failed to update upsell")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upsell": upsell,
	})
}

// DeleteUpsell removes a bundle (admin only)
// DELETE /api/v1/admin/upsells/:id
func (ctrl *UpsellController) DeleteUpsell(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.upsellService.DeleteUpsell(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrUpsellNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Upsell not found",
			})
			return
		}
		log.Error("Failed to delete upsell", err, map[string]interface{}{
			"upsell_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete upsell",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Upsell deleted",
	})
}

// RepriceUpsells recomputes derived bundle pricing on demand (admin only)
// POST /api/v1/admin/upsells/reprice
func (ctrl *UpsellController) RepriceUpsells(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	changed, err := ctrl.upsellService.RepriceAll(c.Request.Context())
	if err != nil {
		log.Error("Failed to reprice upsells", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to reprice upsells",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changed": changed,
	})
}

func (ctrl *UpsellController) respondUpsellError(c *gin.Context, log *logger.Logger, err error, internalMsg string) {
	switch {
	case errors.Is(err, service.ErrUpsellNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Upsell not found",
		})
	case errors.Is(err, service.ErrUpsellEmptyBundle):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "A bundle needs at least one member product",
		})
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "One or more member products do not exist",
		})
	default:
		log.Error(internalMsg, err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": internalMsg,
		})
	}
}
