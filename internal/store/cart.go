package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/annapurna/internal/errs"
	"github.com/example/annapurna/internal/models"
)

// CartStore persists one CartRecord per user. There is no partial-update
// operation: every write replaces the full line-item sequence, so the
// authoritative state is always the last sequence a client pushed.
type CartStore struct {
	db *gorm.DB
}

// NewCartStore constructs a CartStore.
func NewCartStore(db *gorm.DB) *CartStore {
	return &CartStore{db: db}
}

// Get returns the user's cart. Absence is not a failure: a user who never
// pushed a cart gets an empty record.
func (s *CartStore) Get(userID uuid.UUID) (models.CartRecord, error) {
	var record models.CartRecord
	err := s.db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc")
	}).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CartRecord{UserID: userID, Items: []models.CartLineItem{}}, nil
	}
	if err != nil {
		return models.CartRecord{}, errs.Storage("get cart", err)
	}
	if record.Items == nil {
		record.Items = []models.CartLineItem{}
	}
	return record, nil
}

// Replace overwrites the user's entire cart with the given items, creating
// the record if absent. The overwrite is idempotent; item positions follow
// the order of the slice.
func (s *CartStore) Replace(userID uuid.UUID, items []models.CartLineItem) (models.CartRecord, error) {
	var record models.CartRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&record).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			record = models.CartRecord{UserID: userID}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("cart_id = ?", record.ID).Delete(&models.CartLineItem{}).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].BaseModel = models.BaseModel{}
			items[i].CartID = record.ID
			items[i].Position = i
			if items[i].QuantityLabel == "" {
				items[i].QuantityLabel = models.DefaultQuantityLabel
			}
		}

		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		record.Items = items
		return nil
	})
	if err != nil {
		return models.CartRecord{}, errs.Storage("replace cart", err)
	}
	if record.Items == nil {
		record.Items = []models.CartLineItem{}
	}
	return record, nil
}

// Clear empties the user's cart. The record itself survives.
func (s *CartStore) Clear(userID uuid.UUID) error {
	_, err := s.Replace(userID, nil)
	return err
}
