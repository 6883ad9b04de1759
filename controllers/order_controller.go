package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kunal-qd/fabric-orders-api/models"
	"github.com/kunal-qd/fabric-orders-api/services"
	"github.com/kunal-qd/fabric-orders-api/utils"
)

// uploadFieldPrefix keys image files in the multipart form: images_0,
// images_1, ... by entry index on create; images_<window_id> on update.
const uploadFieldPrefix = "images_"

// CreateOrder handles POST /api/orders - saves a new order from the
// multipart order form
func CreateOrder(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "Expected a multipart form")
		return
	}

	input, ok := bindOrderInput(c, form)
	if !ok {
		return
	}
	if input.Status != "" && !models.ValidStatus(input.Status) {
		badRequest(c, fmt.Sprintf("Status must be one of: %s", strings.Join(models.Statuses, ", ")))
		return
	}

	uploads := make(map[int][]*multipart.FileHeader)
	for i := range input.Entries {
		files := form.File[fmt.Sprintf("%s%d", uploadFieldPrefix, i)]
		if len(files) == 0 {
			continue
		}
		if err := utils.ValidateImageFiles(files); err != nil {
			badRequest(c, err.Error())
			return
		}
		uploads[i] = files
	}

	orderID, err := services.CreateOrder(input, uploads)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save order",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":   "success",
		"order_id": orderID,
	})
}

// GetOrder handles GET /api/orders/:id - loads an order for the edit
// form, with the customer fields flattened alongside the order fields
func GetOrder(c *gin.Context) {
	order, customer, err := services.GetOrder(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			orderNotFound(c)
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

	c.JSON(http.StatusOK, gin.H{
		"id":          order.ID,
		"customer_id": order.CustomerID,
		"name":        customer.Name,
		"phone":       customer.Phone,
		"address":     customer.Address,
		"showroom":    customer.Showroom,
		"status":      order.Status,
		"due_date":    order.DueDate,
		"entries":     order.Entries,
		"created_at":  order.CreatedAt,
		"updated_at":  order.UpdatedAt,
	})
}

// UpdateOrder handles PUT /api/orders/:id - applies an edited order
// form, merging image references and purging explicitly deleted blobs
func UpdateOrder(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "Expected a multipart form")
		return
	}

	input, ok := bindOrderInput(c, form)
	if !ok {
		return
	}
	if !models.ValidStatus(input.Status) {
		badRequest(c, fmt.Sprintf("Status must be one of: %s", strings.Join(models.Statuses, ", ")))
		return
	}

	deletedImages := make(map[string][]string)
	if raw := formValue(form, "deleted_images"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &deletedImages); err != nil {
			badRequest(c, "deleted_images must be a JSON map of window_id to blob ids")
			return
		}
	}

	uploads := make(map[string][]*multipart.FileHeader)
	for field, files := range form.File {
		if !strings.HasPrefix(field, uploadFieldPrefix) || len(files) == 0 {
			continue
		}
		if err := utils.ValidateImageFiles(files); err != nil {
			badRequest(c, err.Error())
			return
		}
		windowID := strings.TrimPrefix(field, uploadFieldPrefix)
		uploads[windowID] = files
	}

	if err := services.UpdateOrder(c.Param("id"), input, deletedImages, uploads); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			orderNotFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// DeleteOrder handles DELETE /api/orders/:id - removes the order and
// cascades deletion of its image blobs
func DeleteOrder(c *gin.Context) {
	if err := services.DeleteOrder(c.Param("id")); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			orderNotFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ListOrders handles GET /api/orders/list - the dashboard order table,
// optionally filtered by comma-separated status and showroom sets
func ListOrders(c *gin.Context) {
	summaries, err := services.ListOrders(c.Query("status"), c.Query("showroom"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// bindOrderInput pulls the shared order-form fields out of a multipart
// form. Reports false after writing a 400 when the payload is invalid.
func bindOrderInput(c *gin.Context, form *multipart.Form) (services.OrderInput, bool) {
	input := services.OrderInput{
		Name:     formValue(form, "name"),
		Phone:    formValue(form, "phone"),
		Address:  formValue(form, "address"),
		Showroom: formValue(form, "showroom"),
		Status:   formValue(form, "status"),
		DueDate:  formValue(form, "due_date"),
	}

	if strings.TrimSpace(input.Phone) == "" {
		badRequest(c, "Customer phone is required")
		return services.OrderInput{}, false
	}

	rawEntries := formValue(form, "entries")
	if rawEntries == "" {
		badRequest(c, "Entries payload is required")
		return services.OrderInput{}, false
	}
	if err := json.Unmarshal([]byte(rawEntries), &input.Entries); err != nil {
		badRequest(c, "Entries must be a JSON array")
		return services.OrderInput{}, false
	}

	return input, true
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": message,
		},
	})
}

func orderNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "NOT_FOUND",
			"message": "Order not found",
		},
	})
}
