package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loomshop/loomshop-backend/internal/middleware"
	"github.com/loomshop/loomshop-backend/internal/storage"
)

type UploadController struct {
	media *storage.MediaStore
}

func NewUploadController(media *storage.MediaStore) *UploadController {
	return &UploadController{
		media: media,
	}
}

type UploadTicketRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"`
}

var allowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

// IssueUploadTicket returns a presigned PUT URL for catalog imagery (admin only)
// POST /api/v1/admin/uploads
func (ctrl *UploadController) IssueUploadTicket(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UploadTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	if err := ctrl.media.ValidateContentType(req.ContentType, allowedImageTypes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Only image files are allowed (JPEG, PNG, GIF, WEBP)",
		})
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = "products"
	}

	ticket, err := ctrl.media.IssueUploadTicket(c.Request.Context(), req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to issue upload ticket", err, map[string]interface{}{
			"filename": req.Filename,
			"folder":   folder,
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to issue upload ticket",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload_url": ticket.UploadURL,
		"file_url":   ticket.FileURL,
		"key":        ticket.Key,
	})
}
