package store

import (
	"context"
	"strings"

	"github.com/alextreichler/spiritflow/internal/metrics"
	"github.com/alextreichler/spiritflow/internal/models"
)

// AddProduct assigns the next id (one above the current maximum, or 1),
// appends the product and returns the id. Any ID set on p is ignored.
func (s *Store) AddProduct(ctx context.Context, p models.Product) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreMutations.WithLabelValues("add_product").Inc()

	maxID := 0
	for _, existing := range s.products {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	p = cloneProduct(p)
	p.ID = maxID + 1
	s.products = append(s.products, p)
	s.persist(ctx, KeyProducts, s.products)
	return p.ID
}

// UpdateProduct merges patch into the product with the given id. Unknown ids are ignored.
func (s *Store) UpdateProduct(ctx context.Context, id int, patch models.ProductPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreMutations.WithLabelValues("update_product").Inc()

	for i := range s.products {
		if s.products[i].ID == id {
			patch.Apply(&s.products[i])
		}
	}
	s.persist(ctx, KeyProducts, s.products)
}

// DeleteProduct removes the product. Orders and cart lines that reference it are kept.
func (s *Store) DeleteProduct(ctx context.Context, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreMutations.WithLabelValues("delete_product").Inc()

	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	s.persist(ctx, KeyProducts, s.products)
}

func (s *Store) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProducts(s.products)
}

func (s *Store) Product(id int) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return cloneProduct(p), true
		}
	}
	return models.Product{}, false
}

// RelatedProducts returns up to limit other products in the same category as
// the given product, in catalog order. Unknown ids have no related products.
func (s *Store) RelatedProducts(id, limit int) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Product{}
	var category string
	found := false
	for _, p := range s.products {
		if p.ID == id {
			category, found = p.Category, true
			break
		}
	}
	if !found {
		return out
	}
	for _, p := range s.products {
		if len(out) >= limit {
			break
		}
		if p.ID != id && p.Category == category {
			out = append(out, cloneProduct(p))
		}
	}
	return out
}

type ProductFilter struct {
	Query        string // matched against name and category, case-insensitive
	Category     string // exact match; empty or "All" means any
	FeaturedOnly bool
}

func (f ProductFilter) match(p models.Product) bool {
	if f.Category != "" && f.Category != "All" && p.Category != f.Category {
		return false
	}
	if f.FeaturedOnly && !p.Featured {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Category), q)
}

func (s *Store) FilterProducts(f ProductFilter) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Product{}
	for _, p := range s.products {
		if f.match(p) {
			out = append(out, cloneProduct(p))
		}
	}
	return out
}

// Categories returns the distinct product categories in first-seen order.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}
