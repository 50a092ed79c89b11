package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) DashboardSummary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.analyticsSvc.Summary()})
}
