package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alextreichler/spiritflow/internal/lifecycle"
	"github.com/alextreichler/spiritflow/internal/metrics"
	"github.com/alextreichler/spiritflow/internal/models"
)

// Checkout turns the current cart into a pending order, prepends it to the
// order history, clears the cart and returns the new order id. An empty cart
// yields a zero-total order; callers are expected to guard against that.
func (s *Store) Checkout(ctx context.Context, contact models.ContactDetails) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreMutations.WithLabelValues("checkout").Inc()

	now := s.now()
	id := lifecycle.OrderID(now, s.orderExists)
	order := models.Order{
		ID:              id,
		CustomerName:    contact.Name,
		CustomerEmail:   contact.Email,
		CustomerPhone:   contact.Phone,
		DeliveryAddress: contact.Address,
		Items:           s.cart,
		Total:           lifecycle.Total(s.cart),
		Status:          models.StatusPending,
		Date:            now.UTC(),
	}

	s.orders = append([]models.Order{order}, s.orders...)
	s.cart = []models.CartItem{}
	s.persist(ctx, KeyOrders, s.orders)
	s.persist(ctx, KeyCart, s.cart)

	metrics.CheckoutsTotal.Inc()
	metrics.OrderValue.Observe(order.Total)
	slog.Info("Order placed", "order_id", id, "items", len(order.Items), "total", order.Total)
	return id
}

func (s *Store) orderExists(id string) bool {
	for _, o := range s.orders {
		if o.ID == id {
			return true
		}
	}
	return false
}

// UpdateOrderStatus sets the status of the order with the given id. Unknown
// ids are ignored. Unknown statuses are rejected, and under the strict
// policy so are moves outside the transition table.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	if !lifecycle.Valid(status) {
		return fmt.Errorf("%w: %q", lifecycle.ErrUnknownStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreMutations.WithLabelValues("update_order_status").Inc()

	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		if err := s.policy.Check(s.orders[i].Status, status); err != nil {
			return err
		}
		s.orders[i].Status = status
		metrics.StatusChanges.WithLabelValues(string(status)).Inc()
		break
	}
	s.persist(ctx, KeyOrders, s.orders)
	return nil
}

func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrders(s.orders)
}

func (s *Store) Order(id string) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			return cloneOrder(o), true
		}
	}
	return models.Order{}, false
}

type OrderFilter struct {
	Query  string             // matched against id, customer name and email
	Status models.OrderStatus // empty means any
}

func (f OrderFilter) match(o models.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(o.ID), q) ||
		strings.Contains(strings.ToLower(o.CustomerName), q) ||
		strings.Contains(strings.ToLower(o.CustomerEmail), q)
}

// FilterOrders returns matching orders, newest first.
func (s *Store) FilterOrders(f OrderFilter) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.orders {
		if f.match(o) {
			out = append(out, cloneOrder(o))
		}
	}
	return out
}
