package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alextreichler/spiritflow/internal/models"
)

type checkoutRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

func (req *checkoutRequest) normalize() {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	req.City = strings.TrimSpace(req.City)
	req.State = strings.TrimSpace(req.State)
	req.Zip = strings.TrimSpace(req.Zip)
}

func (req checkoutRequest) validate() map[string]string {
	errors := make(map[string]string)
	if req.FirstName == "" {
		errors["firstName"] = "First name is required."
	}
	if req.LastName == "" {
		errors["lastName"] = "Last name is required."
	}
	if req.Email == "" {
		errors["email"] = "Email address is required."
	} else if !isValidEmail(req.Email) {
		errors["email"] = "Please enter a valid email address."
	}
	if req.Phone == "" {
		errors["phone"] = "Phone number is required."
	}
	if req.Address == "" {
		errors["address"] = "Delivery address is required."
	}
	if req.City == "" {
		errors["city"] = "City is required."
	}
	if req.State == "" {
		errors["state"] = "State is required."
	}
	if req.Zip == "" {
		errors["zip"] = "ZIP code is required."
	}
	return errors
}

// contact flattens the form into the details stored on the order.
func (req checkoutRequest) contact() models.ContactDetails {
	return models.ContactDetails{
		Name:    req.FirstName + " " + req.LastName,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address + ", " + req.City + ", " + req.State + " " + req.Zip,
	}
}

func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.normalize()
	if errs := req.validate(); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	if len(h.Store.Cart()) == 0 {
		writeError(w, http.StatusConflict, "Your cart is empty.")
		return
	}
	if !h.RateLimiter.Allow(r) {
		writeError(w, http.StatusTooManyRequests, "Too Many Requests. Please try again later.")
		return
	}

	// Simulated payment authorisation
	if h.PaymentDelay > 0 {
		timer := time.NewTimer(h.PaymentDelay)
		select {
		case <-r.Context().Done():
			timer.Stop()
			slog.Warn("Checkout abandoned during payment", "email", req.Email)
			return
		case <-timer.C:
		}
	}

	// the cart may have been emptied while payment was pending
	if len(h.Store.Cart()) == 0 {
		writeError(w, http.StatusConflict, "Your cart is empty.")
		return
	}

	orderID := h.Store.Checkout(r.Context(), req.contact())
	WriteJSON(w, http.StatusCreated, map[string]string{"orderId": orderID})
}

func (h *StorefrontHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, found := h.Store.Order(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "Order not found.")
		return
	}
	WriteJSON(w, http.StatusOK, order)
}

func (h *StorefrontHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
	order, found := h.Store.Order(r.PathValue("id"))
	if !found {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	tmpl := h.Templates.Get("confirmation.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	data := map[string]any{
		"Order":  order,
		"Config": h.Store.Config(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		slog.Error("Failed to render confirmation", "order_id", order.ID, "error", err)
	}
}
