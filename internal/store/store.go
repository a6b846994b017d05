package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alextreichler/spiritflow/internal/lifecycle"
	"github.com/alextreichler/spiritflow/internal/metrics"
	"github.com/alextreichler/spiritflow/internal/models"
)

// Collection names. The durable key is the store prefix followed by the name.
const (
	KeyProducts = "products"
	KeyOrders   = "orders"
	KeyConfig   = "config"
	KeyCart     = "cart"
)

const DefaultKeyPrefix = "spiritflow_"

// Store is the single source of truth for products, orders, config and cart.
// Every mutation runs under one mutex and is followed by a synchronous write
// of the collections it touched.
type Store struct {
	mu      sync.Mutex
	backend Backend
	prefix  string
	policy  lifecycle.Policy
	now     func() time.Time

	products []models.Product
	orders   []models.Order
	config   models.StoreConfig
	cart     []models.CartItem
}

type Option func(*Store)

func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

func WithTransitionPolicy(p lifecycle.Policy) Option {
	return func(s *Store) { s.policy = p }
}

// WithClock replaces time.Now for order ids and dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads every collection from backend. A collection that is missing or
// cannot be decoded falls back to its built-in default; Open itself never fails.
func Open(ctx context.Context, backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		prefix:  DefaultKeyPrefix,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.products = loadCollection(ctx, s, KeyProducts, models.DefaultProducts)
	s.orders = loadCollection(ctx, s, KeyOrders, models.DefaultOrders)
	s.config = loadCollection(ctx, s, KeyConfig, models.DefaultConfig)
	s.cart = loadCollection(ctx, s, KeyCart, func() []models.CartItem { return []models.CartItem{} })

	slog.Info("Store loaded",
		"products", len(s.products),
		"orders", len(s.orders),
		"cart_items", len(s.cart),
		"policy", s.policy.String(),
	)
	return s
}

func loadCollection[T any](ctx context.Context, s *Store, name string, def func() T) T {
	key := s.prefix + name
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			slog.Debug("No stored state, using defaults", "key", key)
			metrics.LoadFallbacks.WithLabelValues(name, "missing").Inc()
		} else {
			slog.Error("Error reading stored state, using defaults", "key", key, "error", err)
			metrics.LoadFallbacks.WithLabelValues(name, "read_error").Inc()
		}
		return def()
	}

	// a literal null decodes without error but leaves a zero value
	if len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		slog.Warn("Stored state is empty, using defaults", "key", key)
		metrics.LoadFallbacks.WithLabelValues(name, "empty").Inc()
		return def()
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Error("Error parsing stored state, using defaults", "key", key, "error", err)
		metrics.LoadFallbacks.WithLabelValues(name, "corrupt").Inc()
		return def()
	}
	return v
}

// persist writes one collection. Failures are logged and counted; the
// in-memory state stays authoritative. Callers hold s.mu.
func (s *Store) persist(ctx context.Context, name string, v any) {
	key := s.prefix + name
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Error("Error encoding state", "key", key, "error", err)
		metrics.PersistFailures.WithLabelValues(name).Inc()
		return
	}
	if err := s.backend.Put(ctx, key, raw); err != nil {
		slog.Error("Error persisting state", "key", key, "error", err)
		metrics.PersistFailures.WithLabelValues(name).Inc()
		return
	}
	metrics.PersistWrites.WithLabelValues(name).Inc()
}

// Reset restores every collection to its built-in default and persists all four.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreMutations.WithLabelValues("reset").Inc()

	s.products = models.DefaultProducts()
	s.orders = models.DefaultOrders()
	s.config = models.DefaultConfig()
	s.cart = []models.CartItem{}

	s.persist(ctx, KeyProducts, s.products)
	s.persist(ctx, KeyOrders, s.orders)
	s.persist(ctx, KeyConfig, s.config)
	s.persist(ctx, KeyCart, s.cart)
}

// Snapshot is a consistent copy of all four collections.
type Snapshot struct {
	Products []models.Product   `json:"products"`
	Orders   []models.Order     `json:"orders"`
	Config   models.StoreConfig `json:"config"`
	Cart     []models.CartItem  `json:"cart"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Products: cloneProducts(s.products),
		Orders:   cloneOrders(s.orders),
		Config:   s.config,
		Cart:     cloneItems(s.cart),
	}
}

func (s *Store) Policy() lifecycle.Policy {
	return s.policy
}

func cloneProduct(p models.Product) models.Product {
	if p.ComparePrice != nil {
		v := *p.ComparePrice
		p.ComparePrice = &v
	}
	if p.ABV != nil {
		v := *p.ABV
		p.ABV = &v
	}
	if p.Volume != nil {
		v := *p.Volume
		p.Volume = &v
	}
	return p
}

func cloneProducts(in []models.Product) []models.Product {
	out := make([]models.Product, len(in))
	for i, p := range in {
		out[i] = cloneProduct(p)
	}
	return out
}

func cloneItems(in []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(in))
	copy(out, in)
	return out
}

func cloneOrder(o models.Order) models.Order {
	o.Items = cloneItems(o.Items)
	return o
}

func cloneOrders(in []models.Order) []models.Order {
	out := make([]models.Order, len(in))
	for i, o := range in {
		out[i] = cloneOrder(o)
	}
	return out
}
