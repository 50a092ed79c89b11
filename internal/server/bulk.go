package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/greenmandi/storefront/internal/bulkedit"
	catalogdomain "github.com/greenmandi/storefront/internal/catalog/domain"
)

func (s *Server) BulkState(c *gin.Context) {
	wf := s.bulkSessions.Session(s.adminSession(c))
	c.JSON(http.StatusOK, gin.H{"data": wf.View()})
}

type bulkToggleRequest struct {
	ProductID string `json:"product_id"`
}

func (s *Server) BulkToggle(c *gin.Context) {
	var req bulkToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		AbortWithError(c, newValidationError("product_id", "invalid_product_id", "invalid product id"))
		return
	}

	wf := s.bulkSessions.Session(s.adminSession(c))
	c.JSON(http.StatusOK, gin.H{"data": wf.Toggle(id)})
}

// BulkSelectAll toggles the selection against the currently filtered
// product listing: the caller passes the same filters the product grid is
// showing, and the visible set is computed server-side.
func (s *Server) BulkSelectAll(c *gin.Context) {
	var query struct {
		Category string `form:"category"`
		Organic  string `form:"organic"`
		InStock  string `form:"in_stock"`
		Search   string `form:"q"`
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

	visible, err := s.visibleProductIDs(c, strings.TrimSpace(query.Category), organic, inStock, strings.TrimSpace(query.Search))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	wf := s.bulkSessions.Session(s.adminSession(c))
	c.JSON(http.StatusOK, gin.H{"data": wf.SelectAll(visible)})
}

type bulkActionRequest struct {
	Action string `json:"action"`
}

func (s *Server) BulkChooseAction(c *gin.Context) {
	var req bulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	wf := s.bulkSessions.Session(s.adminSession(c))
	view, err := wf.ChooseAction(bulkedit.Action(strings.TrimSpace(req.Action)))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) BulkCancel(c *gin.Context) {
	wf := s.bulkSessions.Session(s.adminSession(c))
	c.JSON(http.StatusOK, gin.H{"data": wf.Cancel()})
}

type bulkValueRequest struct {
	Value string `json:"value"`
}

func (s *Server) BulkSetValue(c *gin.Context) {
	var req bulkValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	wf := s.bulkSessions.Session(s.adminSession(c))
	c.JSON(http.StatusOK, gin.H{"data": wf.SetValue(req.Value)})
}

func (s *Server) BulkApply(c *gin.Context) {
	wf := s.bulkSessions.Session(s.adminSession(c))
	action := wf.View().Action

	view, err := wf.Apply(c.Request.Context())
	s.metrics.RecordBulkUpdate(string(action), err)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) BulkClear(c *gin.Context) {
	wf := s.bulkSessions.Session(s.adminSession(c))
	c.JSON(http.StatusOK, gin.H{"data": wf.Clear()})
}

func (s *Server) visibleProductIDs(c *gin.Context, category string, organic, inStock *bool, search string) ([]string, error) {
	products, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListRequest{
		Category: category,
		Organic:  organic,
		InStock:  inStock,
		Search:   search,
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids, nil
}
