package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxImageUploadBytes = 8 << 20

func (s *Server) UploadProductImage(c *gin.Context) {
	productID := strings.TrimSpace(c.Param("id"))
	if productID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	if s.uploadLimiter.Enabled() {
		allowed, err := s.uploadLimiter.AllowUpload(c.Request.Context(), c.ClientIP())
		if err != nil {
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !allowed {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
	}

	file, err := c.FormFile("image")
	if err != nil {
		AbortWithError(c, newValidationError("image", "missing_image", "image file is required"))
		return
	}
	if file.Size > maxImageUploadBytes {
		AbortWithError(c, newValidationError("image", "image_too_large", "image exceeds size limit"))
		return
	}

	blob, err := file.Open()
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}
	defer blob.Close()

	contentType := file.Header.Get("Content-Type")
	override, err := s.imageSvc.Upload(c.Request.Context(), productID, contentType, blob)
	s.metrics.RecordImageUpload(err)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": override})
}

func (s *Server) RemoveProductImage(c *gin.Context) {
	productID := strings.TrimSpace(c.Param("id"))
	if productID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.imageSvc.Remove(c.Request.Context(), productID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"product_id": productID, "removed": true}})
}
