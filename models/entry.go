package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Metric is a numeric entry field as submitted by the order form.
// The form is loosely typed: values arrive as JSON numbers, numeric
// strings, empty strings, or not at all. Anything that does not parse
// as a number decodes to zero.
type Metric float64

// UnmarshalJSON coerces numbers, numeric strings, and nulls to float64.
func (m *Metric) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*m = 0
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			*m = 0
			return nil
		}
		*m = Metric(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*m = 0
		return nil
	}
	*m = Metric(f)
	return nil
}

// Float returns the coerced value.
func (m Metric) Float() float64 {
	return float64(m)
}

// Entry is one window's line item within an order. The JSON keys match
// the order form's column labels verbatim; the form predates this
// service and the stored documents must keep round-tripping through it.
type Entry struct {
	Window      string   `json:"Window"`
	StitchType  string   `json:"Stitch Type"`
	Lining      string   `json:"Lining"`
	Width       Metric   `json:"Width (inches)"`
	Height      Metric   `json:"Height (inches)"`
	Quantity    Metric   `json:"Quantity"`
	TrackLength Metric   `json:"Track Length"`
	SQFT        Metric   `json:"SQFT"`
	Panels      Metric   `json:"Panels"`
	WindowID    string   `json:"window_id"` // client-stable key correlating uploads and deletions across edits
	Images      []string `json:"Images"`    // tagged blob references, see NewImageRef
}

// Normalize makes the Images slice non-nil so a persisted entry always
// carries an Images field, even when the client omitted it.
func (e *Entry) Normalize() {
	if e.Images == nil {
		e.Images = []string{}
	}
}

// NormalizeEntries applies Normalize to every entry in place.
func NormalizeEntries(entries []Entry) {
	for i := range entries {
		entries[i].Normalize()
	}
}

// ImageRefPrefix tags blob-store references so stored references can be
// told apart from any future alternate image source.
const ImageRefPrefix = "s3:"

// NewImageRef builds a tagged blob reference from a blob-store key.
func NewImageRef(key string) string {
	return ImageRefPrefix + key
}

// ParseImageRef strips the blob-store tag from ref. The second return
// is false when ref does not point at the blob store.
func ParseImageRef(ref string) (string, bool) {
	if strings.HasPrefix(ref, ImageRefPrefix) {
		return strings.TrimPrefix(ref, ImageRefPrefix), true
	}
	return ref, false
}
