package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is an immutable snapshot of a placed cart plus delivery details.
// Total is always the server-computed value; orders are never updated or
// deleted after creation.
type Order struct {
	BaseModel
	UserID       uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User         *User       `json:"user,omitempty"`
	CustomerName string      `json:"name"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Total        float64     `json:"total"`
	PlacedAt     time.Time   `json:"placed_at"`
	Items        []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID       uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID     string    `json:"product_id"`
	Name          string    `json:"name"`
	QuantityLabel string    `json:"quantity_label"`
	UnitPrice     float64   `json:"unit_price"`
	Quantity      int       `json:"quantity"`
	LineTotal     float64   `json:"line_total"`
}
