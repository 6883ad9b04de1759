package models

import (
	"time"
)

// Customer represents a retail customer of the drapery business
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Phone     string    `gorm:"uniqueIndex;not null" json:"phone"` // de-duplication key: one customer per phone number
	Address   string    `json:"address"`
	Showroom  string    `gorm:"index" json:"showroom"` // branch/location, used as a listing filter
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
