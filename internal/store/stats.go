package store

import (
	"strings"

	"github.com/alextreichler/spiritflow/internal/lifecycle"
	"github.com/alextreichler/spiritflow/internal/models"
)

const (
	LowStockThreshold = 10
	recentOrdersLimit = 5
)

type DashboardStats struct {
	TotalRevenue   float64                    `json:"totalRevenue"`
	TotalOrders    int                        `json:"totalOrders"`
	ActiveOrders   int                        `json:"activeOrders"`
	OrdersByStatus map[models.OrderStatus]int `json:"ordersByStatus"`
	TotalProducts  int                        `json:"totalProducts"`
	LowStock       []ProductStock             `json:"lowStock"`
	Customers      int                        `json:"customers"`
	RecentOrders   []models.Order             `json:"recentOrders"`
	Currency       string                     `json:"currency"`
}

type ProductStock struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

// Stats computes the merchant dashboard figures from the in-memory collections.
// Cancelled orders do not count towards revenue.
func (s *Store) Stats() DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := DashboardStats{
		TotalOrders:    len(s.orders),
		OrdersByStatus: make(map[models.OrderStatus]int),
		TotalProducts:  len(s.products),
		LowStock:       []ProductStock{},
		RecentOrders:   []models.Order{},
		Currency:       s.config.Currency,
	}

	var revenue []models.CartItem
	customers := make(map[string]bool)
	for i, o := range s.orders {
		stats.OrdersByStatus[o.Status]++
		if lifecycle.Active(o.Status) {
			stats.ActiveOrders++
		}
		if o.Status != models.StatusCancelled {
			// one line per order so Total sums in cents
			revenue = append(revenue, models.CartItem{Price: o.Total, Quantity: 1})
		}
		customers[strings.ToLower(o.CustomerEmail)] = true
		if i < recentOrdersLimit {
			stats.RecentOrders = append(stats.RecentOrders, cloneOrder(o))
		}
	}
	stats.TotalRevenue = lifecycle.Total(revenue)
	stats.Customers = len(customers)

	for _, p := range s.products {
		if p.Stock < LowStockThreshold {
			stats.LowStock = append(stats.LowStock, ProductStock{ProductID: p.ID, Name: p.Name, Stock: p.Stock})
		}
	}
	return stats
}
