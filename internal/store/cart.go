package store

import (
	"context"

	"github.com/alextreichler/spiritflow/internal/metrics"
	"github.com/alextreichler/spiritflow/internal/models"
)

// AddToCart increments the quantity of an existing line for the product, or
// appends a new line snapshotting name, image and effective price.
func (s *Store) AddToCart(ctx context.Context, product models.Product, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreMutations.WithLabelValues("add_to_cart").Inc()

	merged := false
	for i := range s.cart {
		if s.cart[i].ProductID == product.ID {
			s.cart[i].Quantity += quantity
			merged = true
		}
	}
	if !merged {
		s.cart = append(s.cart, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.EffectivePrice(),
			Quantity:  quantity,
			Image:     product.Image,
		})
	}
	s.persist(ctx, KeyCart, s.cart)
}

// RemoveFromCart drops every line for productID.
func (s *Store) RemoveFromCart(ctx context.Context, productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreMutations.WithLabelValues("remove_from_cart").Inc()

	kept := []models.CartItem{}
	for _, it := range s.cart {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	s.cart = kept
	s.persist(ctx, KeyCart, s.cart)
}

func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreMutations.WithLabelValues("clear_cart").Inc()

	s.cart = []models.CartItem{}
	s.persist(ctx, KeyCart, s.cart)
}

func (s *Store) Cart() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.cart)
}
