package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunal-qd/fabric-orders-api/models"
)

func TestRenderCache(t *testing.T) {
	cache := NewRenderCache()

	_, ok := cache.Get("order-1")
	assert.False(t, ok)

	pdf := []byte("%PDF-1.4 fake")
	cache.Put("order-1", pdf)

	got, ok := cache.Get("order-1")
	require.True(t, ok)
	assert.Equal(t, pdf, got, "cache hit returns the stored bytes verbatim")

	cache.Invalidate("order-1")
	_, ok = cache.Get("order-1")
	assert.False(t, ok, "invalidation drops the entry")

	// Invalidating an absent key is a no-op
	cache.Invalidate("order-2")
}

// testPNG renders a small solid-color PNG for embedding tests
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func renderFixtures() (models.Order, models.Customer) {
	order := models.Order{
		ID:      "order-render-test",
		Status:  models.StatusPending,
		DueDate: "2026-09-15",
		Entries: []models.Entry{
			{Window: "Hall", StitchType: "Eyelet", Lining: "Blackout", Width: 48, Height: 84, Quantity: 5.5, SQFT: 28, Panels: 2, WindowID: "w1", Images: []string{}},
		},
	}
	customer := models.Customer{
		Name:     "Asha Patel",
		Phone:    "9820012345",
		Address:  "12 Hill Road",
		Showroom: "Bandra",
	}
	return order, customer
}

func TestRenderOrderPDF(t *testing.T) {
	setupServiceTest(t)

	order, customer := renderFixtures()
	pdf, err := RenderOrderPDF(order, customer)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")), "output must be a PDF document")
}

func TestRenderOrderPDFWithImages(t *testing.T) {
	_, store := setupServiceTest(t)

	store.Put("uploads/photo1.png", testPNG(t, 800, 600), "image/png")
	store.Put("uploads/photo2.png", testPNG(t, 100, 100), "image/png")

	order, customer := renderFixtures()
	order.Entries[0].Images = []string{"s3:uploads/photo1.png", "s3:uploads/photo2.png"}

	withImages, err := RenderOrderPDF(order, customer)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(withImages, []byte("%PDF")))

	order.Entries[0].Images = []string{}
	withoutImages, err := RenderOrderPDF(order, customer)
	require.NoError(t, err)
	assert.Greater(t, len(withImages), len(withoutImages), "embedded thumbnails grow the document")
}

func TestRenderOrderPDFSkipsBrokenImages(t *testing.T) {
	_, store := setupServiceTest(t)

	store.Put("uploads/corrupt.jpg", []byte("not an image"), "image/jpeg")

	order, customer := renderFixtures()
	order.Entries[0].Images = []string{
		"s3:uploads/missing.jpg", // never stored
		"s3:uploads/corrupt.jpg", // undecodable
	}

	// Per-image failures are swallowed; the document still renders
	pdf, err := RenderOrderPDF(order, customer)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestRenderOrderPDFBoundsPhotoEntries(t *testing.T) {
	_, store := setupServiceTest(t)

	store.Put("uploads/p.png", testPNG(t, 50, 50), "image/png")

	order, customer := renderFixtures()
	order.Entries = nil
	for i := 0; i < 8; i++ {
		order.Entries = append(order.Entries, models.Entry{
			Window:   "W",
			WindowID: "w",
			Images:   []string{"s3:uploads/p.png"},
		})
	}

	// Eight entries, photos rendered for at most the first six; must
	// not error and must still be a full document
	pdf, err := RenderOrderPDF(order, customer)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
