package models

import (
	"time"

	"gorm.io/datatypes"
)

// Recognized order statuses, in workflow order. The set is closed:
// anything outside it is rejected at the API boundary so dashboard
// bucketing stays total.
const (
	StatusPending   = "Pending"
	StatusCutting   = "Cutting"
	StatusStitching = "Stitching"
	StatusCompleted = "Completed"
)

// Statuses lists every recognized order status.
var Statuses = []string{StatusPending, StatusCutting, StatusStitching, StatusCompleted}

// ValidStatus reports whether s is one of the recognized statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order represents a fabric order and its per-window entries
type Order struct {
	ID         string                     `gorm:"primaryKey" json:"id"` // UUID, generated at creation, immutable
	CustomerID uint                       `gorm:"not null;index" json:"customer_id"`
	Customer   Customer                   `gorm:"foreignKey:CustomerID" json:"-"`
	Status     string                     `gorm:"not null;default:'Pending';index" json:"status"`
	DueDate    string                     `json:"due_date"` // free-form date string, shown as entered
	Entries    datatypes.JSONSlice[Entry] `json:"entries"`
	CreatedAt  time.Time                  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time                  `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
