package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/annapurna/internal/errs"
	"github.com/example/annapurna/internal/models"
)

// OrderStore persists placed orders. Orders are write-once: there is no
// update or delete path.
type OrderStore struct {
	db *gorm.DB
}

// NewOrderStore constructs an OrderStore.
func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create persists a new order together with its items.
func (s *OrderStore) Create(order *models.Order) error {
	if err := s.db.Create(order).Error; err != nil {
		return errs.Storage("create order", err)
	}
	return nil
}

// ListByUser returns the user's orders, most recent first.
func (s *OrderStore) ListByUser(userID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errs.Storage("count orders", err)
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, errs.Storage("list orders", err)
	}

	return orders, total, nil
}

// GetByUser returns one order, scoped to its owner. Absence is errs.ErrNotFound.
func (s *OrderStore) GetByUser(id, userID uuid.UUID) (models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").
		First(&order, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, errs.ErrNotFound
	}
	if err != nil {
		return models.Order{}, errs.Storage("get order", err)
	}
	return order, nil
}
