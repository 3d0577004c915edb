package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/annapurna/internal/models"
)

type fakeCartStore struct {
	records  map[uuid.UUID][]models.CartLineItem
	getErr   error
	clearErr error
	cleared  []uuid.UUID
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{records: make(map[uuid.UUID][]models.CartLineItem)}
}

func (s *fakeCartStore) Get(userID uuid.UUID) (models.CartRecord, error) {
	if s.getErr != nil {
		return models.CartRecord{}, s.getErr
	}
	items, ok := s.records[userID]
	if !ok {
		items = []models.CartLineItem{}
	}
	return models.CartRecord{UserID: userID, Items: items}, nil
}

func (s *fakeCartStore) Replace(userID uuid.UUID, items []models.CartLineItem) (models.CartRecord, error) {
	if items == nil {
		items = []models.CartLineItem{}
	}
	s.records[userID] = items
	return models.CartRecord{UserID: userID, Items: items}, nil
}

func (s *fakeCartStore) Clear(userID uuid.UUID) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = append(s.cleared, userID)
	s.records[userID] = []models.CartLineItem{}
	return nil
}

func newCartApp(carts CartStore) *fiber.App {
	app := fiber.New()
	handler := NewCartHandler(carts)
	app.Get("/api/cart/:userId", handler.GetCart)
	app.Post("/api/cart/:userId", handler.ReplaceCart)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestGetCartAbsentUserReturnsEmptyRecord(t *testing.T) {
	app := newCartApp(newFakeCartStore())
	userID := uuid.New()

	resp, raw := doJSON(t, app, http.MethodGet, "/api/cart/"+userID.String(), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		UserID string            `json:"user_id"`
		Items  []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, userID.String(), body.UserID)
	require.NotNil(t, body.Items)
	assert.Empty(t, body.Items)
}

func TestGetCartInvalidUserID(t *testing.T) {
	app := newCartApp(newFakeCartStore())

	resp, _ := doJSON(t, app, http.MethodGet, "/api/cart/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReplaceCartRoundTrip(t *testing.T) {
	store := newFakeCartStore()
	app := newCartApp(store)
	userID := uuid.New()

	payload := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": "p1", "name": "Basmati", "quantity_label": "1kg", "unit_price": 100.0, "quantity": 2},
			{"product_id": "p1", "name": "Basmati", "quantity_label": "5kg", "unit_price": 450.0, "quantity": 1},
		},
	}

	resp, _ := doJSON(t, app, http.MethodPost, "/api/cart/"+userID.String(), payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/cart/"+userID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var record models.CartRecord
	require.NoError(t, json.Unmarshal(raw, &record))
	require.Len(t, record.Items, 2)
	assert.Equal(t, "1kg", record.Items[0].QuantityLabel)
	assert.Equal(t, 2, record.Items[0].Quantity)
	assert.Equal(t, "5kg", record.Items[1].QuantityLabel)
	assert.InDelta(t, 450.0, record.Items[1].UnitPrice, 0.0001)
}

func TestReplaceCartIsFullOverwrite(t *testing.T) {
	store := newFakeCartStore()
	app := newCartApp(store)
	userID := uuid.New()

	first := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": "p1", "quantity": 3},
			{"product_id": "p2", "quantity": 1},
		},
	}
	resp, _ := doJSON(t, app, http.MethodPost, "/api/cart/"+userID.String(), first)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The later push fully replaces the earlier sequence.
	second := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": "p3", "quantity": 1},
		},
	}
	resp, _ = doJSON(t, app, http.MethodPost, "/api/cart/"+userID.String(), second)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, raw := doJSON(t, app, http.MethodGet, "/api/cart/"+userID.String(), nil)
	var record models.CartRecord
	require.NoError(t, json.Unmarshal(raw, &record))
	require.Len(t, record.Items, 1)
	assert.Equal(t, "p3", record.Items[0].ProductID)
}

func TestReplaceCartWithEmptyItems(t *testing.T) {
	store := newFakeCartStore()
	app := newCartApp(store)
	userID := uuid.New()

	resp, raw := doJSON(t, app, http.MethodPost, "/api/cart/"+userID.String(), map[string]interface{}{
		"items": []map[string]interface{}{},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var record models.CartRecord
	require.NoError(t, json.Unmarshal(raw, &record))
	assert.Empty(t, record.Items)
}

func TestReplaceCartRejectsBadQuantity(t *testing.T) {
	app := newCartApp(newFakeCartStore())
	userID := uuid.New()

	resp, _ := doJSON(t, app, http.MethodPost, "/api/cart/"+userID.String(), map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": "p1", "quantity": 0},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReplaceCartDefaultsQuantityLabel(t *testing.T) {
	store := newFakeCartStore()
	app := newCartApp(store)
	userID := uuid.New()

	resp, raw := doJSON(t, app, http.MethodPost, "/api/cart/"+userID.String(), map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": "p1", "quantity": 1},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var record models.CartRecord
	require.NoError(t, json.Unmarshal(raw, &record))
	require.Len(t, record.Items, 1)
	assert.Equal(t, models.DefaultQuantityLabel, record.Items[0].QuantityLabel)
}

func TestReplaceCartRejectsMissingProductID(t *testing.T) {
	app := newCartApp(newFakeCartStore())
	userID := uuid.New()

	resp, _ := doJSON(t, app, http.MethodPost, "/api/cart/"+userID.String(), map[string]interface{}{
		"items": []map[string]interface{}{
			{"name": "Basmati", "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
