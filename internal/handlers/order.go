package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/annapurna/internal/errs"
	"github.com/example/annapurna/internal/middleware"
	"github.com/example/annapurna/internal/models"
	"github.com/example/annapurna/internal/services"
	"github.com/example/annapurna/internal/utils"
)

// OrderStore is the persistence contract for placed orders.
type OrderStore interface {
	Create(order *models.Order) error
	ListByUser(userID uuid.UUID, limit, offset int) ([]models.Order, int64, error)
	GetByUser(id, userID uuid.UUID) (models.Order, error)
}

// OrderHandler manages order endpoints.
type OrderHandler struct {
	orders   OrderStore
	carts    CartStore
	telegram *services.TelegramService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders OrderStore, carts CartStore, telegram *services.TelegramService) *OrderHandler {
	return &OrderHandler{orders: orders, carts: carts, telegram: telegram}
}

type orderItemRequest struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	QuantityLabel string  `json:"quantity_label"`
	UnitPrice     float64 `json:"unit_price"`
	Quantity      int     `json:"quantity"`
}

type placeOrderRequest struct {
	Name    string             `json:"name"`
	Phone   string             `json:"phone"`
	Address string             `json:"address"`
	Items   []orderItemRequest `json:"items"`
	// Total is the client's optimistic figure; informational only, the
	// server recomputes.
	Total float64 `json:"total"`
}

// PlaceOrder converts the submitted cart snapshot into an immutable order
// and empties the stored cart. Validation happens before any write; the
// cart-clear step failing after the order was created is logged, not
// surfaced, since the order itself succeeded.
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req placeOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	switch {
	case req.Name == "":
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	case req.Phone == "":
		return fiber.NewError(fiber.StatusBadRequest, "phone is required")
	case req.Address == "":
		return fiber.NewError(fiber.StatusBadRequest, "address is required")
	}

	if len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, errs.ErrEmptyCart.Error())
	}

	order := models.Order{
		UserID:       userID,
		CustomerName: req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		PlacedAt:     time.Now(),
	}

	var total float64
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be at least 1")
		}

		label := item.QuantityLabel
		if label == "" {
			label = models.DefaultQuantityLabel
		}

		lineTotal := item.UnitPrice * float64(item.Quantity)
		total += lineTotal

		order.Items = append(order.Items, models.OrderItem{
			ProductID:     item.ProductID,
			Name:          item.Name,
			QuantityLabel: label,
			UnitPrice:     item.UnitPrice,
			Quantity:      item.Quantity,
			LineTotal:     lineTotal,
		})
	}

	order.Total = total

	if err := h.orders.Create(&order); err != nil {
		return err
	}

	// The order exists now; a failed clear leaves a stale cart but must not
	// fail the request.
	if err := h.carts.Clear(userID); err != nil {
		log.Printf("[Order] warning: order %s created but cart clear failed for user %s: %v", order.ID, userID, err)
	}

	if h.telegram != nil {
		go h.notifyNewOrder(order)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":        order.ID,
			"total":     order.Total,
			"name":      order.CustomerName,
			"phone":     order.Phone,
			"address":   order.Address,
			"placed_at": order.PlacedAt,
			"items":     order.Items,
		},
	})
}

func (h *OrderHandler) notifyNewOrder(order models.Order) {
	items := make([]services.OrderItemNotification, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, services.OrderItemNotification{
			Name:     item.Name,
			Label:    item.QuantityLabel,
			Quantity: item.Quantity,
			Price:    item.UnitPrice,
		})
	}

	notification := services.OrderNotification{
		OrderID:      order.ID.String(),
		Items:        items,
		Total:        order.Total,
		CustomerName: order.CustomerName,
		Phone:        order.Phone,
		Address:      order.Address,
	}

	if err := h.telegram.NotifyNewOrder(notification); err != nil {
		log.Printf("[Order] Telegram notification failed: %v", err)
	}
}

// ListOrders returns orders for the authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.ListByUser(userID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.GetByUser(id, userID)
	if err != nil {
		if err == errs.ErrNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
