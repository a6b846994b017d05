package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alextreichler/spiritflow/internal/media"
	"github.com/alextreichler/spiritflow/internal/models"
	"github.com/alextreichler/spiritflow/internal/store"
)

const maxUploadSize = 10 << 20 // 10MB

// AdminHandler serves the merchant dashboard API.
type AdminHandler struct {
	Store *store.Store
	Media media.Disk
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Store.Stats())
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Store.FilterProducts(store.ProductFilter{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}))
}

func validateProduct(p models.Product) map[string]string {
	errors := make(map[string]string)
	if strings.TrimSpace(p.Name) == "" {
		errors["name"] = "Name is required."
	}
	if strings.TrimSpace(p.Category) == "" {
		errors["category"] = "Category is required."
	}
	if p.Price < 0 {
		errors["price"] = "Price cannot be negative."
	}
	if p.ComparePrice != nil && *p.ComparePrice < 0 {
		errors["comparePrice"] = "Compare price cannot be negative."
	}
	if p.Stock < 0 {
		errors["stock"] = "Stock cannot be negative."
	}
	if p.ABV != nil && (*p.ABV < 0 || *p.ABV > 100) {
		errors["abv"] = "ABV must be between 0 and 100."
	}
	return errors
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	if errs := validateProduct(p); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	id := h.Store.AddProduct(r.Context(), p)
	created, _ := h.Store.Product(id)
	slog.Info("Product created", "product_id", id, "name", created.Name)
	WriteJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var patch models.ProductPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	current, found := h.Store.Product(id)
	if !found {
		writeError(w, http.StatusNotFound, "Product not found.")
		return
	}
	// validate the merged result so partial updates are checked in context
	patch.Apply(&current)
	if errs := validateProduct(current); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	h.Store.UpdateProduct(r.Context(), id, patch)
	updated, _ := h.Store.Product(id)
	WriteJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if _, found := h.Store.Product(id); !found {
		writeError(w, http.StatusNotFound, "Product not found.")
		return
	}
	h.Store.DeleteProduct(r.Context(), id)
	slog.Info("Product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if _, found := h.Store.Product(id); !found {
		writeError(w, http.StatusNotFound, "Product not found.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "File too large. Max 10MB.")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeValidation(w, map[string]string{"image": "Image file is required."})
		return
	}
	defer file.Close()

	name, data, err := media.ProcessImage(file, header.Filename)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedFormat) {
			writeValidation(w, map[string]string{"image": "Unsupported image format. Only PNG, JPG, JPEG are allowed."})
			return
		}
		slog.Warn("Failed to process image", "product_id", id, "error", err)
		writeValidation(w, map[string]string{"image": "Failed to decode image."})
		return
	}

	url, err := h.Media.Put(r.Context(), name, data, "image/jpeg")
	if err != nil {
		slog.Error("Failed to store image", "product_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Error saving image file.")
		return
	}

	h.Store.UpdateProduct(r.Context(), id, models.ProductPatch{Image: &url})
	updated, _ := h.Store.Product(id)
	WriteJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) ColorPresets(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, models.ColorPresets)
}

// UpdateConfig merges a partial config. primaryColor takes a hex code or a preset name.
func (h *AdminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var patch models.ConfigPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.PrimaryColor != nil {
		if color, ok := models.PresetColor(*patch.PrimaryColor); ok {
			patch.PrimaryColor = &color
		}
	}

	errors := make(map[string]string)
	if patch.StoreName != nil && strings.TrimSpace(*patch.StoreName) == "" {
		errors["storeName"] = "Store name cannot be empty."
	}
	if patch.Layout != nil && *patch.Layout != models.LayoutGrid && *patch.Layout != models.LayoutList {
		errors["layout"] = "Layout must be grid or list."
	}
	if patch.PrimaryColor != nil && !hexColorRegex.MatchString(*patch.PrimaryColor) {
		errors["primaryColor"] = "Primary color must be a hex code like #1e3a5f."
	}
	if patch.ContactEmail != nil && *patch.ContactEmail != "" && !isValidEmail(strings.ToLower(*patch.ContactEmail)) {
		errors["contactEmail"] = "Please enter a valid email address."
	}
	if len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	WriteJSON(w, http.StatusOK, h.Store.UpdateConfig(r.Context(), patch))
}
