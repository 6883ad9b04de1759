package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunal-qd/fabric-orders-api/config"
	"github.com/kunal-qd/fabric-orders-api/controllers"
	"github.com/kunal-qd/fabric-orders-api/middleware"
	"github.com/kunal-qd/fabric-orders-api/tests/testutil"
)

// newTestRouter mirrors the production route table over the test-wired
// singletons.
func newTestRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	api := router.Group("/api")
	api.POST("/login", controllers.Login)
	authed := api.Group("")
	authed.Use(middleware.RequireSession(cfg))
	{
		authed.GET("/customers/search", controllers.SearchCustomers)
		authed.POST("/orders", controllers.CreateOrder)
		authed.GET("/orders/list", controllers.ListOrders)
		authed.GET("/orders/:id", controllers.GetOrder)
		authed.PUT("/orders/:id", controllers.UpdateOrder)
		authed.DELETE("/orders/:id", controllers.DeleteOrder)
		authed.GET("/orders/:id/print", controllers.PrintOrder)
		authed.GET("/dashboard/kpis", controllers.DashboardKPIs)
		authed.GET("/image/*fid", controllers.GetImage)
	}

	return router
}

// TestOrderLifecycle walks the whole flow an office admin drives from
// the dashboard: save an order with a photo, find the customer again,
// check the dashboard, print the form, and finally delete the order.
func TestOrderLifecycle(t *testing.T) {
	testutil.RequireTestEnvironment(t)
	_, store, cfg := testutil.SetupTestApp(t)
	router := newTestRouter(cfg)

	token, err := middleware.IssueSessionToken(cfg)
	require.NoError(t, err)

	send := func(method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		if body == nil {
			body = &bytes.Buffer{}
		}
		req, _ := http.NewRequest(method, path, body)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// 1. Save a new order with one uploaded photo
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("name", "Asha Patel"))
	require.NoError(t, writer.WriteField("phone", "9820012345"))
	require.NoError(t, writer.WriteField("showroom", "Bandra"))
	require.NoError(t, writer.WriteField("status", "Pending"))
	require.NoError(t, writer.WriteField("entries",
		`[{"Window": "Hall", "Stitch Type": "Eyelet", "Width (inches)": 48, "Height (inches)": 84, "SQFT": "28", "Panels": 2, "window_id": "w1"}]`))
	fw, err := writer.CreateFormFile("images_0", "hall.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := send("POST", "/api/orders", body, writer.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Status  string `json:"status"`
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.OrderID)

	// 2. The uploaded photo is fetchable through the image endpoint
	w = send("GET", "/api/orders/"+created.OrderID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var loaded struct {
		Entries []struct {
			Images []string `json:"Images"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	require.Len(t, loaded.Entries, 1)
	require.Len(t, loaded.Entries[0].Images, 1)

	imageRef := loaded.Entries[0].Images[0]
	w = send("GET", "/api/image/"+imageRef, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("jpeg-bytes"), w.Body.Bytes())

	// 3. Customer autocomplete finds the customer with prefill entries
	w = send("GET", "/api/customers/search?term=9820", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var matches []struct {
		Name            string                   `json:"name"`
		PreviousEntries []map[string]interface{} `json:"previous_entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "Asha Patel", matches[0].Name)
	assert.Len(t, matches[0].PreviousEntries, 1)

	// 4. Dashboard reflects the order
	w = send("GET", "/api/dashboard/kpis", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var kpis struct {
		Orders int            `json:"orders"`
		SQFT   float64        `json:"sqft"`
		Panels int            `json:"panels"`
		Status map[string]int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kpis))
	assert.Equal(t, 1, kpis.Orders)
	assert.Equal(t, 28.0, kpis.SQFT)
	assert.Equal(t, 2, kpis.Panels)
	assert.Equal(t, 1, kpis.Status["Pending"])

	// 5. Print the order form
	w = send("GET", "/api/orders/"+created.OrderID+"/print", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	// 6. Delete the order: the document and its blobs disappear
	w = send("DELETE", "/api/orders/"+created.OrderID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = send("GET", "/api/orders/"+created.OrderID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = send("GET", "/api/image/"+imageRef, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, store.Keys(), "cascade must leave no orphaned blobs")
}
