package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kunal-qd/fabric-orders-api/config"
)

// TestHealthCheck is a unit test for the healthCheck handler function
func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	healthCheck(c)

	assert.Equal(t, http.StatusOK, w.Code, "Expected status code 200")

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "Response should be valid JSON")
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "Fabric Orders API is running", response["message"])
}

// TestRouterGuardsAPIRoutes verifies the route table: health and login
// are public, everything else answers 401 without a session
func TestRouterGuardsAPIRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := setupRouter(&config.Config{SessionSecret: "router-test-secret"})

	req, _ := http.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "health must be public")

	protected := []struct {
		method string
		path   string
	}{
		{"GET", "/api/customers/search"},
		{"POST", "/api/orders"},
		{"GET", "/api/orders/list"},
		{"GET", "/api/orders/some-id"},
		{"PUT", "/api/orders/some-id"},
		{"DELETE", "/api/orders/some-id"},
		{"GET", "/api/orders/some-id/print"},
		{"GET", "/api/dashboard/kpis"},
		{"GET", "/api/image/some-key"},
	}
	for _, p := range protected {
		req, _ := http.NewRequest(p.method, p.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s should require a session", p.method, p.path)
	}
}
