package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kunal-qd/fabric-orders-api/services"
)

// SearchCustomers handles GET /api/customers/search - the order form's
// customer autocomplete. Matches name or phone, newest customers first,
// each hit carrying the entries of their latest order for prefill.
func SearchCustomers(c *gin.Context) {
	results, err := services.SearchCustomers(c.Query("term"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to search customers",
			},
		})
		return
	}

	c.JSON(http.StatusOK, results)
}
