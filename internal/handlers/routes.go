package handlers

import (
	"net/http"

	"github.com/alextreichler/spiritflow/internal/metrics"
)

// Routes bundles everything the router needs.
type Routes struct {
	Storefront *StorefrontHandler
	Admin      *AdminHandler
	AgeGate    *AgeGate
	// Uploads serves locally stored product images; nil when images live elsewhere
	Uploads http.Handler
}

func NewMux(rt Routes) *http.ServeMux {
	sf, admin, gate := rt.Storefront, rt.Admin, rt.AgeGate
	mux := http.NewServeMux()

	if rt.Uploads != nil {
		mux.Handle("GET /uploads/", rt.Uploads)
	}

	// Ops
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Storefront pages
	mux.HandleFunc("GET /{$}", gate.Require(sf.Index))
	mux.HandleFunc("GET /orders/{id}/confirmation", sf.Confirmation)

	// Storefront API
	mux.HandleFunc("GET /api/age-verification", gate.Status)
	mux.HandleFunc("POST /api/age-verification", gate.Verify)
	mux.HandleFunc("GET /api/csrf-token", sf.CSRFToken)
	mux.HandleFunc("GET /api/config", sf.Config)
	mux.HandleFunc("GET /api/categories", sf.Categories)
	mux.HandleFunc("GET /api/products", sf.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", sf.GetProduct)
	mux.HandleFunc("GET /api/products/{id}/related", sf.RelatedProducts)
	mux.HandleFunc("GET /api/cart", gate.Require(sf.Cart))
	mux.HandleFunc("GET /api/cart/quote", gate.Require(sf.Quote))
	mux.HandleFunc("POST /api/cart/items", gate.Require(sf.AddCartItem))
	mux.HandleFunc("DELETE /api/cart/items/{productId}", gate.Require(sf.RemoveCartItem))
	mux.HandleFunc("DELETE /api/cart", gate.Require(sf.ClearCart))
	mux.HandleFunc("POST /api/checkout", gate.Require(sf.Checkout))
	mux.HandleFunc("GET /api/orders/{id}", sf.GetOrder)

	// Dashboard API
	mux.HandleFunc("GET /admin/api/stats", admin.Dashboard)
	mux.HandleFunc("GET /admin/api/products", admin.ListProducts)
	mux.HandleFunc("POST /admin/api/products", admin.CreateProduct)
	mux.HandleFunc("PATCH /admin/api/products/{id}", admin.UpdateProduct)
	mux.HandleFunc("DELETE /admin/api/products/{id}", admin.DeleteProduct)
	mux.HandleFunc("POST /admin/api/products/{id}/image", admin.UploadProductImage)
	mux.HandleFunc("GET /admin/api/orders", admin.ListOrders)
	mux.HandleFunc("GET /admin/api/orders/{id}", admin.GetOrder)
	mux.HandleFunc("PATCH /admin/api/orders/{id}/status", admin.UpdateOrderStatus)
	mux.HandleFunc("GET /admin/api/config/presets", admin.ColorPresets)
	mux.HandleFunc("PATCH /admin/api/config", admin.UpdateConfig)

	return mux
}
