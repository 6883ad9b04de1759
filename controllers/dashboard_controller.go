package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kunal-qd/fabric-orders-api/services"
)

// DashboardKPIs handles GET /api/dashboard/kpis - whole-dataset
// aggregates for the dashboard header
func DashboardKPIs(c *gin.Context) {
	snapshot, err := services.DashboardKPIs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to compute dashboard KPIs",
			},
		})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
