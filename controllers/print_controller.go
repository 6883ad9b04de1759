package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kunal-qd/fabric-orders-api/services"
)

// PrintOrder handles GET /api/orders/:id/print - renders the printable
// order form as PDF. Rendered bytes are cached by order id; the cache
// is invalidated whenever the order is updated or deleted.
func PrintOrder(c *gin.Context) {
	orderID := c.Param("id")

	cache := services.GetRenderCache()
	if pdf, ok := cache.Get(orderID); ok {
		servePDF(c, orderID, pdf)
		return
	}

	order, customer, err := services.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Order not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order",
			},
		})
		return
	}

	pdf, err := services.RenderOrderPDF(order, customer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RENDER_ERROR",
				"message": "Failed to render order form",
			},
		})
		return
	}

	cache.Put(orderID, pdf)
	servePDF(c, orderID, pdf)
}

func servePDF(c *gin.Context, orderID string, pdf []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=Order_%s.pdf", orderID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
