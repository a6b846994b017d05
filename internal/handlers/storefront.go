package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"

	"github.com/alextreichler/spiritflow/internal/lifecycle"
	"github.com/alextreichler/spiritflow/internal/store"
)

// StorefrontHandler serves the shopper-facing pages and API.
type StorefrontHandler struct {
	Store     *store.Store
	Templates *TemplateCache
	// PaymentDelay is how long checkout pretends to talk to a payment provider
	PaymentDelay time.Duration
	// RateLimiter throttles accepted checkouts per client; nil disables it
	RateLimiter *RateLimiter
}

func (h *StorefrontHandler) Index(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("home.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		category = "All"
	}
	data := map[string]any{
		"Config":     h.Store.Config(),
		"Categories": h.Store.Categories(),
		"Category":   category,
		"Products":   h.Store.FilterProducts(store.ProductFilter{Category: category}),
		"CsrfToken":  csrf.Token(r),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		slog.Error("Failed to render storefront", "error", err)
	}
}

func (h *StorefrontHandler) Config(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Store.Config())
}

func (h *StorefrontHandler) Categories(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Store.Categories())
}

func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ProductFilter{
		Query:        q.Get("q"),
		Category:     q.Get("category"),
		FeaturedOnly: q.Get("featured") == "true" || q.Get("featured") == "1",
	}
	WriteJSON(w, http.StatusOK, h.Store.FilterProducts(filter))
}

func (h *StorefrontHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	p, found := h.Store.Product(id)
	if !found {
		writeError(w, http.StatusNotFound, "Product not found.")
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

const relatedProductsLimit = 4

// RelatedProducts lists other products from the same category.
func (h *StorefrontHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if _, found := h.Store.Product(id); !found {
		writeError(w, http.StatusNotFound, "Product not found.")
		return
	}
	limit := relatedProductsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= relatedProductsLimit {
			limit = n
		}
	}
	WriteJSON(w, http.StatusOK, h.Store.RelatedProducts(id, limit))
}

func (h *StorefrontHandler) Cart(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Store.Cart())
}

func (h *StorefrontHandler) Quote(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, lifecycle.NewQuote(h.Store.Cart()))
}

type addToCartRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

func (h *StorefrontHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity < 1 {
		writeValidation(w, map[string]string{"quantity": "Quantity must be at least 1."})
		return
	}

	p, found := h.Store.Product(req.ProductID)
	if !found {
		writeError(w, http.StatusNotFound, "Product not found.")
		return
	}
	if p.Stock <= 0 {
		writeError(w, http.StatusConflict, p.Name+" is out of stock.")
		return
	}

	h.Store.AddToCart(r.Context(), p, req.Quantity)
	WriteJSON(w, http.StatusOK, h.Store.Cart())
}

func (h *StorefrontHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "productId")
	if !ok {
		return
	}
	h.Store.RemoveFromCart(r.Context(), id)
	WriteJSON(w, http.StatusOK, h.Store.Cart())
}

func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.Store.ClearCart(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// CSRFToken hands script clients the token they must echo in X-CSRF-Token.
func (h *StorefrontHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-CSRF-Token", csrf.Token(r))
	WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": csrf.Token(r)})
}
