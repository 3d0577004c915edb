package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/annapurna/internal/models"
)

// CartStore is the persistence contract for per-user cart records.
type CartStore interface {
	Get(userID uuid.UUID) (models.CartRecord, error)
	Replace(userID uuid.UUID, items []models.CartLineItem) (models.CartRecord, error)
	Clear(userID uuid.UUID) error
}

// CartHandler manages the cart reconciliation endpoints.
type CartHandler struct {
	carts CartStore
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(carts CartStore) *CartHandler {
	return &CartHandler{carts: carts}
}

// GetCart returns the stored cart for a user. A user who never pushed a
// cart gets an empty items array, not an error.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	record, err := h.carts.Get(userID)
	if err != nil {
		return err
	}

	return c.JSON(record)
}

type cartLineItemRequest struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	QuantityLabel string  `json:"quantity_label"`
	UnitPrice     float64 `json:"unit_price"`
	Quantity      int     `json:"quantity"`
}

type replaceCartRequest struct {
	Items []cartLineItemRequest `json:"items"`
}

// ReplaceCart overwrites the user's entire cart with the submitted items.
// There is no merge: concurrent pushes resolve to whichever one storage
// observed last.
func (h *CartHandler) ReplaceCart(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	var req replaceCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	items := make([]models.CartLineItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "product_id is required")
		}
		if item.Quantity < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be at least 1")
		}

		label := item.QuantityLabel
		if label == "" {
			label = models.DefaultQuantityLabel
		}

		items = append(items, models.CartLineItem{
			ProductID:     item.ProductID,
			Name:          item.Name,
			QuantityLabel: label,
			UnitPrice:     item.UnitPrice,
			Quantity:      item.Quantity,
		})
	}

	record, err := h.carts.Replace(userID, items)
	if err != nil {
		return err
	}

	return c.JSON(record)
}
