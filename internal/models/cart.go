package models

import (
	"github.com/google/uuid"
)

// CartRecord is the server-held authoritative cart for one user. It is
// created lazily on first write and emptied, never deleted, when an order
// is placed.
type CartRecord struct {
	BaseModel
	UserID uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Items  []CartLineItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

// CartLineItem is one product+variant selection within a cart. Two lines
// with the same product but different quantity labels are distinct entries;
// the lookup key is (ProductID, QuantityLabel).
type CartLineItem struct {
	BaseModel
	CartID        uuid.UUID `gorm:"type:uuid;index" json:"-"`
	ProductID     string    `json:"product_id"`
	Name          string    `json:"name"`
	QuantityLabel string    `json:"quantity_label"`
	UnitPrice     float64   `json:"unit_price"`
	Quantity      int       `json:"quantity"`
	Position      int       `json:"-"`
}

// DefaultQuantityLabel is used for products without quantity variants.
const DefaultQuantityLabel = "default"
