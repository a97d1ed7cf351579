package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/internal/app/service"
	apperrors "github.com/loomshop/loomshop-backend/internal/errors"
	"github.com/loomshop/loomshop-backend/internal/middleware"
)

type CollectionController struct {
	collectionService service.CollectionService
}

func NewCollectionController(collectionService service.CollectionService) *CollectionController {
	return &CollectionController{
		collectionService: collectionService,
	}
}

type CollectionRequest struct {
	Name         string  `json:"name" binding:"required"`
	Slug         string  `json:"slug" binding:"required"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image_url"`
	DisplayOrder int     `json:"display_order"`
	ProductIDs   []int64 `json:"product_ids"`
	IsActive     *bool   `json:"is_active"`
}

func (req *CollectionRequest) toModel() *model.Collection {
	collection := &model.Collection{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		DisplayOrder: req.DisplayOrder,
		ProductIDs:   pq.Int64Array(req.ProductIDs),
		IsActive:     true,
	}
	if req.IsActive != nil {
		collection.IsActive = *req.IsActive
	}
	return collection
}

// GetAllCollections returns the collection listing
// GET /api/v1/collections
func (ctrl *CollectionController) GetAllCollections(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	activeOnly := !(c.Query("all") == "true" && middleware.IsAdmin(c))

	collections, err := ctrl.collectionService.ListCollections(activeOnly)
	if err != nil {
		log.Error("Failed to fetch collections", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch collections",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collections": collections,
		"count":       len(collections),
	})
}

// GetCollectionBySlug returns a collection with its resolved members
// GET /api/v1/collections/:slug
func (ctrl *CollectionController) GetCollectionBySlug(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	detail, err := ctrl.collectionService.GetCollectionBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCollectionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Collection not found",
			})
			return
		}
		log.Error("Failed to fetch collection", err, map[string]interface{}{
			"slug": c.Param("slug"),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch collection",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collection": detail.Collection,
		"products":   detail.Products,
	})
}

// CreateCollection creates a collection (admin only)
// POST /api/v1/admin/collections
func (ctrl *CollectionController) CreateCollection(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	collection := req.toModel()
	if err := ctrl.collectionService.CreateCollection(collection); err != nil {
		if errors.Is(err, service.ErrCollectionSlugExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "A collection with this slug already exists",
			})
			return
		}
		log.Error("Failed to create collection", err, map[string]interface{}{
			"slug": req.Slug,
		})
		info := apperrors.ParseError(err, "collection")
		if info.Code == apperrors.CollectionSlugExists {
			apperrors.Conflict(c, info.Code, info.Message)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create collection",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"collection": collection,
	})
}

// UpdateCollection updates a collection (admin only)
// PUT /api/v1/admin/collections/:id
func (ctrl *CollectionController) UpdateCollection(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	collection := req.toModel()
	collection.ID = id
	if err := ctrl.collectionService.UpdateCollection(collection); err != nil {
		switch {
		case errors.Is(err, service.ErrCollectionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Collection not found",
			})
		case errors.Is(err, service.ErrCollectionSlugExists):
			c.JSON(http.StatusConflict, gin.H{
				"error": "A collection with this slug already exists",
			})
		default:
			log.Error("Failed to update collection", err, map[string]interface{}{
				"collection_id": id,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update collection",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collection": collection,
	})
}

// DeleteCollection removes a collection (admin only)
// DELETE /api/v1/admin/collections/:id
func (ctrl *CollectionController) DeleteCollection(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.collectionService.DeleteCollection(id); err != nil {
		if errors.Is(err, service.ErrCollectionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Collection not found",
			})
			return
		}
		log.Error("Failed to delete collection", err, map[string]interface{}{
			"collection_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete collection",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Collection deleted",
	})
}
