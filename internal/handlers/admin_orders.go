package handlers

import (
	"errors"
	"net/http"

	"github.com/alextreichler/spiritflow/internal/lifecycle"
	"github.com/alextreichler/spiritflow/internal/models"
	"github.com/alextreichler/spiritflow/internal/store"
)

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter := store.OrderFilter{Query: r.URL.Query().Get("q")}
	if s := r.URL.Query().Get("status"); s != "" && s != "all" {
		status, err := lifecycle.ParseStatus(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Unknown order status.")
			return
		}
		filter.Status = status
	}
	WriteJSON(w, http.StatusOK, h.Store.FilterOrders(filter))
}

// orderView adds the statuses the order may conventionally move to next.
type orderView struct {
	models.Order
	NextStatuses []models.OrderStatus `json:"nextStatuses"`
}

func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, found := h.Store.Order(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "Order not found.")
		return
	}
	WriteJSON(w, http.StatusOK, orderView{Order: order, NextStatuses: lifecycle.Next(order.Status)})
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	status, err := lifecycle.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown order status.")
		return
	}
	if _, found := h.Store.Order(id); !found {
		writeError(w, http.StatusNotFound, "Order not found.")
		return
	}

	if err := h.Store.UpdateOrderStatus(r.Context(), id, status); err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrTransitionNotAllowed):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, lifecycle.ErrUnknownStatus):
			writeError(w, http.StatusBadRequest, "Unknown order status.")
		default:
			writeError(w, http.StatusInternalServerError, "Error updating status.")
		}
		return
	}

	order, _ := h.Store.Order(id)
	WriteJSON(w, http.StatusOK, orderView{Order: order, NextStatuses: lifecycle.Next(order.Status)})
}
