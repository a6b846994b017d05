package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextreichler/spiritflow/internal/lifecycle"
	"github.com/alextreichler/spiritflow/internal/media"
	"github.com/alextreichler/spiritflow/internal/models"
	"github.com/alextreichler/spiritflow/internal/store"
)

type testServer struct {
	t          *testing.T
	mux        *http.ServeMux
	store      *store.Store
	storefront *StorefrontHandler
	cookie     *http.Cookie
}

func newTestServer(t *testing.T, opts ...store.Option) *testServer {
	t.Helper()
	opts = append([]store.Option{store.WithClock(func() time.Time { return time.UnixMilli(1_700_000_654_321) })}, opts...)
	st := store.Open(context.Background(), store.NewMemoryBackend(), opts...)

	templates := NewTemplateCache()
	require.NoError(t, templates.Load())

	disk, err := media.NewLocalDisk(t.TempDir(), "/uploads")
	require.NoError(t, err)

	sf := &StorefrontHandler{Store: st, Templates: templates}
	mux := NewMux(Routes{
		Storefront: sf,
		Admin:      &AdminHandler{Store: st, Media: disk},
		AgeGate:    &AgeGate{SessionStore: sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))},
	})
	return &testServer{t: t, mux: mux, store: st, storefront: sf}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

// verifyAge passes the age gate and keeps the session cookie for later requests.
func (s *testServer) verifyAge() {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/age-verification", map[string]bool{"verified": true})
	require.Equal(s.t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(s.t, cookies)
	s.cookie = cookies[0]
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAgeGate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), AgeRefusalMessage)

	rec = s.do(http.MethodPost, "/api/age-verification", map[string]bool{"verified": false})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), AgeRefusalMessage)

	rec = s.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.verifyAge()
	rec = s.do(http.MethodGet, "/api/age-verification", nil)
	assert.Equal(t, map[string]bool{"verified": true}, decode[map[string]bool](t, rec))

	rec = s.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SpiritFlow Liquors")
	assert.Contains(t, rec.Body.String(), "Golden Reserve Whiskey")
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/products?category=Beer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, p := range decode[[]models.Product](t, rec) {
		assert.Equal(t, "Beer", p.Category)
	}

	rec = s.do(http.MethodGet, "/api/products?featured=true", nil)
	for _, p := range decode[[]models.Product](t, rec) {
		assert.True(t, p.Featured)
	}

	rec = s.do(http.MethodGet, "/api/products/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Coastal Gin", decode[models.Product](t, rec).Name)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/products/999", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/products/abc", nil).Code)

	rec = s.do(http.MethodGet, "/api/categories", nil)
	assert.Equal(t, []string{"Spirits", "Beer", "Wine"}, decode[[]string](t, rec))
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t)
	s.verifyAge()

	rec := s.do(http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: 1, Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: 3, Quantity: 1})
	cart := decode[[]models.CartItem](t, rec)
	require.Len(t, cart, 2)
	assert.Equal(t, 2, cart[0].Quantity)

	rec = s.do(http.MethodGet, "/api/cart/quote", nil)
	q := decode[lifecycle.Quote](t, rec)
	assert.Equal(t, 104.97, q.Subtotal)
	assert.Equal(t, 0.0, q.Shipping)
	assert.Equal(t, 3, q.Items)

	rec = s.do(http.MethodDelete, "/api/cart/items/1", nil)
	assert.Len(t, decode[[]models.CartItem](t, rec), 1)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/cart", nil).Code)
	assert.Empty(t, s.store.Cart())
}

func TestAddToCartValidation(t *testing.T) {
	s := newTestServer(t)
	s.verifyAge()

	rec := s.do(http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: 1, Quantity: 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: 42, Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	zero := 0
	s.store.UpdateProduct(context.Background(), 1, models.ProductPatch{Stock: &zero})
	rec = s.do(http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: 1, Quantity: 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/cart/items", map[string]any{"productId": 1, "qty": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

var validCheckout = checkoutRequest{
	FirstName: "Jane",
	LastName:  "Doe",
	Email:     "Jane@Example.com",
	Phone:     "555-0100",
	Address:   "1 Main St",
	City:      "Springfield",
	State:     "IL",
	Zip:       "62701",
}

func TestCheckout(t *testing.T) {
	s := newTestServer(t)
	s.verifyAge()

	rec := s.do(http.MethodPost, "/api/checkout", validCheckout)
	assert.Equal(t, http.StatusConflict, rec.Code, "empty cart")

	s.do(http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: 1, Quantity: 1})
	s.do(http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: 3, Quantity: 1})

	rec = s.do(http.MethodPost, "/api/checkout", validCheckout)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "ORD-654321", decode[map[string]string](t, rec)["orderId"])
	assert.Empty(t, s.store.Cart())

	rec = s.do(http.MethodGet, "/api/orders/ORD-654321", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	order := decode[models.Order](t, rec)
	assert.Equal(t, "Jane Doe", order.CustomerName)
	assert.Equal(t, "jane@example.com", order.CustomerEmail)
	assert.Equal(t, "1 Main St, Springfield, IL 62701", order.DeliveryAddress)
	assert.Equal(t, 58.98, order.Total)
	assert.Equal(t, models.StatusPending, order.Status)

	rec = s.do(http.MethodGet, "/orders/ORD-654321/confirmation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ORD-654321")
	assert.Contains(t, rec.Body.String(), "£58.98")

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/orders/ORD-000000", nil).Code)
}

func TestCheckoutValidation(t *testing.T) {
	s := newTestServer(t)
	s.verifyAge()
	s.do(http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: 1, Quantity: 1})

	bad := validCheckout
	bad.Email = "not-an-email"
	bad.Zip = "  "
	rec := s.do(http.MethodPost, "/api/checkout", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Contains(t, resp.Fields, "email")
	assert.Contains(t, resp.Fields, "zip")
	assert.Len(t, s.store.Cart(), 1)
}

func TestCheckoutCancelledDuringPayment(t *testing.T) {
	s := newTestServer(t)
	s.verifyAge()
	s.do(http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: 1, Quantity: 1})

	h := &StorefrontHandler{Store: s.store, PaymentDelay: time.Hour}
	body, _ := json.Marshal(validCheckout)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader(body)).WithContext(ctx)
	h.Checkout(httptest.NewRecorder(), req)

	assert.Len(t, s.store.Cart(), 1)
	assert.Len(t, s.store.Orders(), 3)
}

func TestAdminProducts(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/admin/api/products", map[string]any{
		"name": "Smoky Mezcal", "category": "Spirits", "price": 54.0, "stock": 8,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Product](t, rec)
	assert.Equal(t, 7, created.ID)

	rec = s.do(http.MethodPost, "/admin/api/products", map[string]any{"name": "", "category": "Wine", "price": -1})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Fields, "price")

	rec = s.do(http.MethodPatch, "/admin/api/products/7", map[string]any{"stock": 20})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Product](t, rec)
	assert.Equal(t, 20, updated.Stock)
	assert.Equal(t, "Smoky Mezcal", updated.Name)

	rec = s.do(http.MethodPatch, "/admin/api/products/7", map[string]any{"stock": -5})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPatch, "/admin/api/products/99", map[string]any{"stock": 1}).Code)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/admin/api/products/7", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/admin/api/products/7", nil).Code)

	rec = s.do(http.MethodGet, "/admin/api/products?q=lager", nil)
	products := decode[[]models.Product](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "Japanese Lager", products[0].Name)
}

func TestAdminUploadProductImage(t *testing.T) {
	s := newTestServer(t)

	img := image.NewRGBA(image.Rect(0, 0, 1200, 600))
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "bottle.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/api/products/2/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[models.Product](t, rec)
	assert.True(t, strings.HasPrefix(p.Image, "/uploads/products/"))
	assert.True(t, strings.HasSuffix(p.Image, ".jpg"))
}

func TestAdminOrderStatusPermissive(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPatch, "/admin/api/orders/ORD-1002/status", map[string]string{"status": "pending"})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[orderView](t, rec)
	assert.Equal(t, models.StatusPending, view.Status)
	assert.Equal(t, []models.OrderStatus{models.StatusConfirmed, models.StatusCancelled}, view.NextStatuses)

	rec = s.do(http.MethodPatch, "/admin/api/orders/ORD-1002/status", map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPatch, "/admin/api/orders/ORD-9999/status", map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminOrderStatusStrict(t *testing.T) {
	s := newTestServer(t, store.WithTransitionPolicy(lifecycle.Strict))

	rec := s.do(http.MethodPatch, "/admin/api/orders/ORD-1001/status", map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPatch, "/admin/api/orders/ORD-1001/status", map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminListOrders(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/admin/api/orders?status=processing", nil)
	orders := decode[[]models.Order](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-1003", orders[0].ID)

	rec = s.do(http.MethodGet, "/admin/api/orders?q=sarah", nil)
	orders = decode[[]models.Order](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-1002", orders[0].ID)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/admin/api/orders?status=lost", nil).Code)
}

func TestAdminStats(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/admin/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[store.DashboardStats](t, rec)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 6, stats.TotalProducts)
	assert.Equal(t, 119.48, stats.TotalRevenue)
}

func TestAdminUpdateConfig(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPatch, "/admin/api/config", map[string]string{"layout": "list", "primaryColor": "#7B1E3A"})
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[models.StoreConfig](t, rec)
	assert.Equal(t, models.LayoutList, cfg.Layout)
	assert.Equal(t, "#7B1E3A", cfg.PrimaryColor)
	assert.Equal(t, "SpiritFlow Liquors", cfg.StoreName)

	rec = s.do(http.MethodPatch, "/admin/api/config", map[string]string{"layout": "masonry", "primaryColor": "red"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	fields := decode[errorResponse](t, rec).Fields
	assert.Contains(t, fields, "layout")
	assert.Contains(t, fields, "primaryColor")
	assert.Equal(t, models.LayoutList, s.store.Config().Layout)
}

func TestRateLimiterAllow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	assert.True(t, rl.Allow(req))
	assert.False(t, rl.Allow(req))

	other := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	other.RemoteAddr = "198.51.100.7:4000"
	assert.True(t, rl.Allow(other))

	var disabled *RateLimiter
	assert.True(t, disabled.Allow(req))
}

func TestCheckoutRateLimitSkipsRejectedForms(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.storefront.RateLimiter = NewRateLimiter(ctx, time.Minute)
	s.verifyAge()
	s.do(http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: 1, Quantity: 1})

	typo := validCheckout
	typo.Email = "jane@example"
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodPost, "/api/checkout", typo).Code)

	rec := s.do(http.MethodPost, "/api/checkout", validCheckout)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	s.do(http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: 3, Quantity: 1})
	rec = s.do(http.MethodPost, "/api/checkout", validCheckout)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Len(t, s.store.Cart(), 1)
}

func TestRelatedProducts(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/products/1/related", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	related := decode[[]models.Product](t, rec)
	require.Len(t, related, 2)
	for _, p := range related {
		assert.Equal(t, "Spirits", p.Category)
		assert.NotEqual(t, 1, p.ID)
	}

	rec = s.do(http.MethodGet, "/api/products/1/related?limit=1", nil)
	assert.Len(t, decode[[]models.Product](t, rec), 1)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/products/999/related", nil).Code)
}

func TestAdminColorPresets(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/admin/api/config/presets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	presets := decode[[]models.ColorPreset](t, rec)
	require.Len(t, presets, len(models.ColorPresets))
	assert.Equal(t, "Navy", presets[0].Name)

	rec = s.do(http.MethodPatch, "/admin/api/config", map[string]string{"primaryColor": "burgundy"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ColorBurgundy, decode[models.StoreConfig](t, rec).PrimaryColor)
}

func TestOpsEndpoints(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", nil).Code)

	rec := s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestLoggingMiddlewareLabelsRoute(t *testing.T) {
	s := newTestServer(t)
	var seen string
	inner := RouteMiddleware(s.mux)
	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner.ServeHTTP(w, r)
		seen = w.(*responseWriter).route
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GET /api/products/{id}", seen)
}
