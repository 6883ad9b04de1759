package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"sync"

	"github.com/jung-kurt/gofpdf"
	xdraw "golang.org/x/image/draw"

	"github.com/kunal-qd/fabric-orders-api/models"
)

// RenderCache caches rendered order forms by order id. Invalidate is
// fired from order update and delete so a reprint never serves stale
// bytes.
type RenderCache interface {
	Get(orderID string) ([]byte, bool)
	Put(orderID string, pdf []byte)
	Invalidate(orderID string)
}

// memoryRenderCache is the process-local RenderCache implementation
type memoryRenderCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewRenderCache creates an empty in-memory render cache
func NewRenderCache() RenderCache {
	return &memoryRenderCache{entries: make(map[string][]byte)}
}

var renderCacheInstance = NewRenderCache()

// GetRenderCache returns the render cache instance
func GetRenderCache() RenderCache {
	return renderCacheInstance
}

// SetRenderCache sets the render cache instance (primarily for testing)
func SetRenderCache(cache RenderCache) {
	renderCacheInstance = cache
}

func (c *memoryRenderCache) Get(orderID string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pdf, ok := c.entries[orderID]
	return pdf, ok
}

func (c *memoryRenderCache) Put(orderID string, pdf []byte) {
	c.mu.Lock()
	c.entries[orderID] = pdf
	c.mu.Unlock()
}

func (c *memoryRenderCache) Invalidate(orderID string) {
	c.mu.Lock()
	delete(c.entries, orderID)
	c.mu.Unlock()
}

const (
	// maxPhotoEntries bounds how many entries get a photo grid; later
	// entries still appear in the measurement table.
	maxPhotoEntries = 6

	// thumbnail bounding box in pixels before embedding
	thumbMaxW = 480
	thumbMaxH = 360

	// re-encode quality for embedded thumbnails, keeps the PDF small
	thumbJPEGQuality = 60
)

// RenderOrderPDF renders an order and its customer into a printable A4
// order form: a header, the customer metadata block, a measurement
// table over all entries, and a photo grid for the first few entries.
// Per-image failures are logged and skipped so one corrupt upload never
// sinks the whole form.
func RenderOrderPDF(order models.Order, customer models.Customer) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Quilt and Drapes - Order Form", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// Customer metadata block
	pdf.SetFont("Arial", "", 10)
	meta := [][2]string{
		{"Name", customer.Name},
		{"Phone", customer.Phone},
		{"Address", customer.Address},
		{"Branch", customer.Showroom},
		{"Status", order.Status},
		{"Due Date", order.DueDate},
	}
	for _, kv := range meta {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(28, 6, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Measurement table
	headers := []string{"Window", "Stitch Type", "Lining", "Dimensions", "Qty", "Track", "SQFT", "Panels"}
	widths := []float64{38, 30, 24, 28, 18, 18, 18, 16}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, e := range order.Entries {
		dims := fmt.Sprintf("%g\" x %g\"", e.Width.Float(), e.Height.Float())
		cells := []string{
			e.Window,
			e.StitchType,
			e.Lining,
			dims,
			fmt.Sprintf("%.2f", e.Quantity.Float()),
			fmt.Sprintf("%g", e.TrackLength.Float()),
			fmt.Sprintf("%.2f", e.SQFT.Float()),
			fmt.Sprintf("%d", int(e.Panels.Float())),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	// Photo grids for the first few entries
	store := GetBlobStore()
	photoEntries := order.Entries
	if len(photoEntries) > maxPhotoEntries {
		photoEntries = photoEntries[:maxPhotoEntries]
	}
	imgSeq := 0
	for _, e := range photoEntries {
		if len(e.Images) == 0 {
			continue
		}

		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Window: %s", e.Window), "", 1, "L", false, 0, "")

		const boxW, boxH, gap = 58.0, 44.0, 3.0
		col := 0
		for _, ref := range e.Images {
			thumb, err := fetchThumbnail(store, ref)
			if err != nil {
				log.Printf("order %s: skipping image %s: %v", order.ID, ref, err)
				continue
			}

			if col == 3 {
				pdf.Ln(boxH + gap)
				col = 0
			}
			if pdf.GetY()+boxH > 282 {
				pdf.AddPage()
			}

			imgSeq++
			name := fmt.Sprintf("photo_%d", imgSeq)
			opts := gofpdf.ImageOptions{ImageType: "JPG"}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(thumb))
			x := 10 + float64(col)*(boxW+gap)
			pdf.ImageOptions(name, x, pdf.GetY(), boxW, 0, false, opts, 0, "")
			col++
		}
		if col > 0 {
			pdf.Ln(boxH + gap)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render order form: %w", err)
	}
	return buf.Bytes(), nil
}

// fetchThumbnail fetches a referenced blob, downscales it into the
// thumbnail bounding box, and re-encodes it as JPEG.
func fetchThumbnail(store BlobStore, ref string) ([]byte, error) {
	key, _ := models.ParseImageRef(ref)
	data, _, err := store.Fetch(key)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > thumbMaxW || h > thumbMaxH {
		scale := float64(thumbMaxW) / float64(w)
		if s := float64(thumbMaxH) / float64(h); s < scale {
			scale = s
		}
		dw := int(float64(w) * scale)
		dh := int(float64(h) * scale)
		if dw < 1 {
			dw = 1
		}
		if dh < 1 {
			dh = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
		src = dst
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, src, &jpeg.Options{Quality: thumbJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode failed: %w", err)
	}
	return out.Bytes(), nil
}
