package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kunal-qd/fabric-orders-api/models"
	"github.com/kunal-qd/fabric-orders-api/services"
)

// GetImage handles GET /api/image/*fid - serves a stored reference
// photo. The id may be a tagged blob reference or a bare object key.
func GetImage(c *gin.Context) {
	fid := strings.TrimPrefix(c.Param("fid"), "/")
	if fid == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Image id is required",
			},
		})
		return
	}

	key, _ := models.ParseImageRef(fid)
	data, contentType, err := services.GetBlobStore().Fetch(key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Image not found",
			},
		})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.Data(http.StatusOK, contentType, data)
}
