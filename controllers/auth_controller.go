package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/kunal-qd/fabric-orders-api/config"
	"github.com/kunal-qd/fabric-orders-api/middleware"
)

// LoginRequest represents the request body for the admin login
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/login - checks the shared admin password and
// issues a session cookie
func Login(c *gin.Context) {
	cfg := config.GetConfig()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Password is required",
			},
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Incorrect password",
			},
		})
		return
	}

	token, err := middleware.IssueSessionToken(cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SESSION_ERROR",
				"message": "Failed to create session",
			},
		})
		return
	}

	// httpOnly session cookie, 24h to match the token lifetime
	c.SetCookie(middleware.SessionCookieName, token, 24*60*60, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
	})
}

// Logout handles POST /api/logout - clears the session cookie
func Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
