package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kunal-qd/fabric-orders-api/config"
	"github.com/kunal-qd/fabric-orders-api/models"
)

// searchLimit bounds the customer autocomplete result set.
const searchLimit = 10

// CustomerMatch is one customer autocomplete hit. PreviousEntries holds
// the entries of the customer's most recent order so the form can
// prefill measurements on a repeat visit.
type CustomerMatch struct {
	ID              uint           `json:"id"`
	Name            string         `json:"name"`
	Phone           string         `json:"phone"`
	Address         string         `json:"address"`
	Showroom        string         `json:"showroom"`
	PreviousEntries []models.Entry `json:"previous_entries"`
}

// OrderSummary is one row of the dashboard order table.
type OrderSummary struct {
	ID        string    `json:"id"`
	Customer  string    `json:"customer"`
	Phone     string    `json:"phone"`
	Showroom  string    `json:"showroom"`
	Status    string    `json:"status"`
	DueDate   string    `json:"due_date"`
	Items     int       `json:"items"`
	Panels    int       `json:"panels"`
	SQFT      float64   `json:"sqft"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KPISnapshot aggregates the whole order set for the dashboard header.
type KPISnapshot struct {
	Orders int            `json:"orders"`
	SQFT   float64        `json:"sqft"`
	Panels int            `json:"panels"`
	Status map[string]int `json:"status"`
}

// SearchCustomers returns up to ten customers matching term, newest
// first. An empty term matches everything; otherwise the match is a
// case-insensitive substring test against name or phone. Each hit is
// decorated with the entries of that customer's latest order (one extra
// lookup per hit, fine at this scale).
func SearchCustomers(term string) ([]CustomerMatch, error) {
	db := config.GetDB()

	query := db.Model(&models.Customer{}).Order("created_at DESC").Limit(searchLimit)
	term = strings.TrimSpace(term)
	if term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ?", pattern, pattern)
	}

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}

	results := make([]CustomerMatch, 0, len(customers))
	for _, c := range customers {
		match := CustomerMatch{
			ID:              c.ID,
			Name:            c.Name,
			Phone:           c.Phone,
			Address:         c.Address,
			Showroom:        c.Showroom,
			PreviousEntries: []models.Entry{},
		}

		var latest models.Order
		err := db.Where("customer_id = ?", c.ID).Order("created_at DESC").First(&latest).Error
		if err == nil {
			entries := []models.Entry(latest.Entries)
			models.NormalizeEntries(entries)
			match.PreviousEntries = entries
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load latest order for customer %d: %w", c.ID, err)
		}

		results = append(results, match)
	}

	return results, nil
}

// ListOrders returns order summaries, newest first. statusCSV restricts
// by status membership at the query level; showroomCSV is applied after
// resolving each order's customer. Orders whose customer row is missing
// are skipped without error.
func ListOrders(statusCSV, showroomCSV string) ([]OrderSummary, error) {
	db := config.GetDB()

	query := db.Model(&models.Order{}).Preload("Customer").Order("created_at DESC")
	if statuses := splitCSV(statusCSV); len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	showrooms := splitCSV(showroomCSV)

	summaries := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		if o.Customer.ID == 0 {
			// customer row gone; skip rather than surface a broken row
			continue
		}
		if len(showrooms) > 0 && !contains(showrooms, o.Customer.Showroom) {
			continue
		}

		panels := 0.0
		sqft := 0.0
		for _, e := range o.Entries {
			panels += e.Panels.Float()
			sqft += e.SQFT.Float()
		}

		summaries = append(summaries, OrderSummary{
			ID:        o.ID,
			Customer:  o.Customer.Name,
			Phone:     o.Customer.Phone,
			Showroom:  o.Customer.Showroom,
			Status:    o.Status,
			DueDate:   o.DueDate,
			Items:     len(o.Entries),
			Panels:    int(panels),
			SQFT:      round2(sqft),
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
		})
	}

	return summaries, nil
}

// DashboardKPIs scans every order and aggregates total square footage,
// total panel count, and order counts bucketed by status.
func DashboardKPIs() (KPISnapshot, error) {
	db := config.GetDB()

	var orders []models.Order
	if err := db.Find(&orders).Error; err != nil {
		return KPISnapshot{}, fmt.Errorf("failed to scan orders: %w", err)
	}

	snapshot := KPISnapshot{
		Orders: len(orders),
		Status: make(map[string]int, len(models.Statuses)),
	}
	for _, s := range models.Statuses {
		snapshot.Status[s] = 0
	}

	panels := 0.0
	for _, o := range orders {
		for _, e := range o.Entries {
			snapshot.SQFT += e.SQFT.Float()
			panels += e.Panels.Float()
		}
		if _, ok := snapshot.Status[o.Status]; ok {
			snapshot.Status[o.Status]++
		}
	}
	snapshot.SQFT = round2(snapshot.SQFT)
	snapshot.Panels = int(panels)

	return snapshot, nil
}

// splitCSV splits a comma-separated filter into trimmed, non-empty values.
func splitCSV(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
