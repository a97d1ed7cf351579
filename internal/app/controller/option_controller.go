package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/internal/app/service"
	"github.com/loomshop/loomshop-backend/internal/middleware"
)

type OptionController struct {
	optionService service.OptionService
}

func NewOptionController(optionService service.OptionService) *OptionController {
	return &OptionController{
		optionService: optionService,
	}
}

type ResolveRequest struct {
	Selection model.Selection `json:"selection"`
}

type SelectOptionRequest struct {
	Selection model.Selection `json:"selection"`
	GroupID   uint            `json:"group_id" binding:"required"`
	OptionID  uint            `json:"option_id" binding:"required"`
}

type OptionGroupRequest struct {
	Name         string `json:"name" binding:"required"`
	DisplayOrder int    `json:"display_order"`
	SizeChartURL string `json:"size_chart_url"`
}

type OptionValueRequest struct {
	Value    string `json:"value" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

type ChainingRequest struct {
	ParentGroupID uint                `json:"parent_group_id" binding:"required"`
	ChildGroupID  uint                `json:"child_group_id" binding:"required"`
	Constraints   model.ConstraintMap `json:"constraints"`
}

// ResolveOptions computes the selectable state for a selection
// POST /api/v1/products/:id/options/resolve
func (ctrl *OptionController) ResolveOptions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	resolution, err := ctrl.optionService.ResolveProduct(c.Request.Context(), productID, req.Selection)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		log.Error("Failed to resolve options", err, map[string]interface{}{
			"product_id": productID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve options",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resolution": resolution,
	})
}

// SelectOption applies one pick and returns the cascaded selection
// POST /api/v1/products/:id/options/select
func (ctrl *OptionController) SelectOption(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SelectOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	selection, resolution, err := ctrl.optionService.SelectProductOption(
		c.Request.Context(), productID, req.Selection, req.GroupID, req.OptionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		case errors.Is(err, service.ErrOptionGroupNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Option group not found",
			})
		case errors.Is(err, service.ErrOptionValueNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Option value not found",
			})
		default:
			log.Error("Failed to select option", err, map[string]interface{}{
				"product_id": productID,
				"group_id":   req.GroupID,
				"option_id":  req.OptionID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to select option",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"selection":  selection,
		"resolution": resolution,
	})
}

// CreateGroup adds an option group to a product (admin only)
// POST /api/v1/admin/products/:id/option-groups
func (ctrl *OptionController) CreateGroup(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req OptionGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	group := &model.OptionGroup{
		ProductID:    productID,
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
		SizeChartURL: req.SizeChartURL,
	}
	if err := ctrl.optionService.CreateGroup(c.Request.Context(), group); err != nil {
		ctrl.respondOptionError(c, err, "Failed to create option group")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"group": group,
	})
}

// UpdateGroup updates an option group (admin only)
// PUT /api/v1/admin/option-groups/:id
func (ctrl *OptionController) UpdateGroup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req OptionGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	group := &model.OptionGroup{
		ID:           id,
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
		SizeChartURL: req.SizeChartURL,
	}
	if err := ctrl.optionService.UpdateGroup(c.Request.Context(), group); err != nil {
		ctrl.respondOptionError(c, err, "Failed to update option group")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group": group,
	})
}

// DeleteGroup removes an option group (admin only)
// DELETE /api/v1/admin/option-groups/:id
func (ctrl *OptionController) DeleteGroup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.optionService.DeleteGroup(c.Request.Context(), id); err != nil {
		ctrl.respondOptionError(c, err, "Failed to delete option group")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Option group deleted",
	})
}

// CreateValue adds a value to an option group (admin only)
// POST /api/v1/admin/option-groups/:id/values
func (ctrl *OptionController) CreateValue(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req OptionValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	value := &model.OptionValue{
		GroupID:  groupID,
		Value:    req.Value,
		IsActive: true,
	}
	if req.IsActive != nil {
		value.IsActive = *req.IsActive
	}
	if err := ctrl.optionService.CreateValue(c.Request.Context(), value); err != nil {
		ctrl.respondOptionError(c, err, "Failed to create option value")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"value": value,
	})
}

// UpdateValue updates an option value (admin only)
// PUT /api/v1/admin/option-values/:id
func (ctrl *OptionController) UpdateValue(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req OptionValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	value := &model.OptionValue{
		ID:       id,
		Value:    req.Value,
		IsActive: true,
	}
	if req.IsActive != nil {
		value.IsActive = *req.IsActive
	}
	if err := ctrl.optionService.UpdateValue(c.Request.Context(), value); err != nil {
		ctrl.respondOptionError(c, err, "Failed to update option value")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"value": value,
	})
}

// DeleteValue removes an option value (admin only)
// DELETE /api/v1/admin/option-values/:id
func (ctrl *OptionController) DeleteValue(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.optionService.DeleteValue(c.Request.Context(), id); err != nil {
		ctrl.respondOptionError(c, err, "Failed to delete option value")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Option value deleted",
	})
}

// CreateChaining adds a chaining relationship to a product (admin only)
// POST /api/v1/admin/products/:id/chaining
func (ctrl *OptionController) CreateChaining(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ChainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	rel := &model.ChainingRelationship{
		ProductID:     productID,
		ParentGroupID: req.ParentGroupID,
		ChildGroupID:  req.ChildGroupID,
		Constraints:   req.Constraints,
	}
	if err := ctrl.optionService.CreateRelationship(c.Request.Context(), rel); err != nil {
		ctrl.respondOptionError(c, err, "Failed to create chaining relationship")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"chaining": rel,
	})
}

// UpdateChaining updates a chaining relationship (admin only)
// PUT /api/v1/admin/chaining/:id
func (ctrl *OptionController) UpdateChaining(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ChainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	rel := &model.ChainingRelationship{
		ID:            id,
		ParentGroupID: req.ParentGroupID,
		ChildGroupID:  req.ChildGroupID,
		Constraints:   req.Constraints,
	}
	if err := ctrl.optionService.UpdateRelationship(c.Request.Context(), rel); err != nil {
		ctrl.respondOptionError(c, err, "Failed to update chaining relationship")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chaining": rel,
	})
}

// DeleteChaining removes a chaining relationship (admin only)
// DELETE /api/v1/admin/chaining/:id
func (ctrl *OptionController) DeleteChaining(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.optionService.DeleteRelationship(c.Request.Context(), id); err != nil {
		ctrl.respondOptionError(c, err, "Failed to delete chaining relationship")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Chaining relationship deleted",
	})
}

func (ctrl *OptionController) respondOptionError(c *gin.Context, err error, internalMsg string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
	case errors.Is(err, service.ErrOptionGroupNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Option group not found",
		})
	case errors.Is(err, service.ErrOptionValueNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Option value not found",
		})
	case errors.Is(err, service.ErrOptionGroupMismatch):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Option group belongs to a different product",
		})
	case errors.Is(err, service.ErrInvalidChaining):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid chaining relationship",
		})
	default:
		log.Error(internalMsg, err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": internalMsg,
		})
	}
}
