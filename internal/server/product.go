package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	catalogdomain "github.com/greenmandi/storefront/internal/catalog/domain"
)

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Category string `form:"category"`
		Organic  string `form:"organic"`
		InStock  string `form:"in_stock"`
		Search   string `form:"q"`
		Locale   string `form:"locale"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	organic, err := parseOptionalBool(query.Organic)
	if err != nil {
		AbortWithError(c, newValidationError("organic", "invalid_organic", "invalid organic"))
		return
	}
	inStock, err := parseOptionalBool(query.InStock)
	if err != nil {
		AbortWithError(c, newValidationError("in_stock", "invalid_in_stock", "invalid in_stock"))
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListRequest{
		Category: strings.TrimSpace(query.Category),
		Organic:  organic,
		InStock:  inStock,
		Search:   strings.TrimSpace(query.Search),
		Locale:   strings.TrimSpace(query.Locale),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	for i := range resp {
		resp[i].Image = s.imageSvc.Resolve(resp[i].ID, resp[i].Image)
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.catalogSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp.Image = s.imageSvc.Resolve(resp.ID, resp.Image)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCategories(c *gin.Context) {
	resp, err := s.catalogSvc.Categories(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
