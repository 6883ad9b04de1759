package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kunal-qd/fabric-orders-api/config"
)

// SessionCookieName is the cookie carrying the admin session token.
const SessionCookieName = "qd_session"

// sessionTTL is how long a login remains valid.
const sessionTTL = 24 * time.Hour

// IssueSessionToken creates a signed session token for the shared admin
// login.
func IssueSessionToken(cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"sub": "admin",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(sessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.SessionSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// RequireSession guards API routes behind the admin session. The token
// is read from the session cookie or an Authorization bearer header;
// anything missing, expired, or tampered with gets a 401.
func RequireSession(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			abortUnauthorized(c, "Login required")
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.SessionSecret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Session is invalid or expired")
			return
		}

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
