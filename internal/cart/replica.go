package cart

import (
	"context"
	"log"
	"sync"

	"github.com/example/annapurna/internal/errs"
	"github.com/example/annapurna/internal/models"
)

// Line is one product+variant selection in the client-held cart. Lines are
// keyed by (ProductID, Label); the same product under two labels is two lines.
type Line struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Label     string  `json:"quantity_label"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Backend is the server side of the reconciliation protocol: one read, one
// full-replacement write. There is no merge; the last push wins.
type Backend interface {
	Fetch(ctx context.Context, userID string) ([]Line, error)
	Push(ctx context.Context, userID string, lines []Line) error
}

// OrderRequest carries the checkout payload. Total is the client's
// optimistic figure; the server recomputes and its value is authoritative.
type OrderRequest struct {
	UserID  string  `json:"userId"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	Items   []Line  `json:"items"`
	Total   float64 `json:"total"`
}

// OrderConfirmation is what the server returns for a placed order.
type OrderConfirmation struct {
	OrderID string  `json:"id"`
	Total   float64 `json:"total"`
}

// OrderBackend places an order on the server.
type OrderBackend interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderConfirmation, error)
}

// Replica is the client-held optimistic copy of a user's cart. Mutations
// apply to the local lines synchronously and then push the whole sequence to
// the backend on a goroutine; a failed push is only logged, the local state
// stays authoritative for the session.
type Replica struct {
	userID  string
	backend Backend

	mu    sync.Mutex
	lines []Line
	wg    sync.WaitGroup
}

// NewReplica constructs an empty replica for the given user.
func NewReplica(userID string, backend Backend) *Replica {
	return &Replica{userID: userID, backend: backend}
}

// Hydrate loads the stored cart once, at session start. Later mutations
// never re-read the server state.
func (r *Replica) Hydrate(ctx context.Context) error {
	lines, err := r.backend.Fetch(ctx, r.userID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.lines = lines
	r.mu.Unlock()
	return nil
}

// Add increments the quantity of the matching (ProductID, Label) line by
// one, or appends a new line with quantity 1. First-seen key order is kept.
func (r *Replica) Add(line Line) {
	if line.Label == "" {
		line.Label = models.DefaultQuantityLabel
	}

	r.mu.Lock()
	found := false
	for i := range r.lines {
		if r.lines[i].ProductID == line.ProductID && r.lines[i].Label == line.Label {
			r.lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		line.Quantity = 1
		r.lines = append(r.lines, line)
	}
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.push(snapshot)
}

// RemoveOne decrements the matching line's quantity, dropping the line when
// it reaches zero. Absent lines are a no-op.
func (r *Replica) RemoveOne(productID, label string) {
	r.mu.Lock()
	for i := range r.lines {
		if r.lines[i].ProductID == productID && r.lines[i].Label == label {
			r.lines[i].Quantity--
			if r.lines[i].Quantity <= 0 {
				r.lines = append(r.lines[:i], r.lines[i+1:]...)
			}
			break
		}
	}
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.push(snapshot)
}

// Remove drops the matching line regardless of its quantity.
func (r *Replica) Remove(productID, label string) {
	r.mu.Lock()
	for i := range r.lines {
		if r.lines[i].ProductID == productID && r.lines[i].Label == label {
			r.lines = append(r.lines[:i], r.lines[i+1:]...)
			break
		}
	}
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.push(snapshot)
}

// Clear empties the replica and pushes the empty sequence.
func (r *Replica) Clear() {
	r.mu.Lock()
	r.lines = nil
	r.mu.Unlock()

	r.push([]Line{})
}

// Lines returns a copy of the current line sequence.
func (r *Replica) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Total is the client's optimistic total, for display before checkout.
func (r *Replica) Total() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total float64
	for _, line := range r.lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}

// Checkout validates delivery details and the cart locally, places the
// order, and clears the replica on success. The returned total is the
// server's, not the optimistic one.
func (r *Replica) Checkout(ctx context.Context, orders OrderBackend, name, phone, address string) (OrderConfirmation, error) {
	switch {
	case name == "":
		return OrderConfirmation{}, errs.Validation("name")
	case phone == "":
		return OrderConfirmation{}, errs.Validation("phone")
	case address == "":
		return OrderConfirmation{}, errs.Validation("address")
	}

	lines := r.Lines()
	if len(lines) == 0 {
		return OrderConfirmation{}, errs.ErrEmptyCart
	}

	confirmation, err := orders.PlaceOrder(ctx, OrderRequest{
		UserID:  r.userID,
		Name:    name,
		Phone:   phone,
		Address: address,
		Items:   lines,
		Total:   r.Total(),
	})
	if err != nil {
		return OrderConfirmation{}, err
	}

	r.Clear()
	return confirmation, nil
}

// Flush waits for all in-flight pushes, for shutdown and tests.
func (r *Replica) Flush() {
	r.wg.Wait()
}

func (r *Replica) snapshotLocked() []Line {
	snapshot := make([]Line, len(r.lines))
	copy(snapshot, r.lines)
	return snapshot
}

// push sends the snapshot to the backend without blocking the caller.
// Failure degrades to a log line; the local replica keeps its state.
func (r *Replica) push(snapshot []Line) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.backend.Push(context.Background(), r.userID, snapshot); err != nil {
			log.Printf("[Cart] push failed for user %s: %v", r.userID, err)
		}
	}()
}
