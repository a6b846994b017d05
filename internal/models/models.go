package models

import (
	"time"
)

type Product struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Subcategory  string   `json:"subcategory"`
	Price        float64  `json:"price"`
	ComparePrice *float64 `json:"comparePrice,omitempty"`
	Stock        int      `json:"stock"`
	SKU          string   `json:"sku"`
	Image        string   `json:"image"`
	Description  string   `json:"description"`
	ABV          *float64 `json:"abv,omitempty"`    // percentage
	Volume       *string  `json:"volume,omitempty"` // display string, e.g. "750ml"
	Featured     bool     `json:"featured"`
}

// EffectivePrice is the unit price a cart line is snapshotted at.
func (p Product) EffectivePrice() float64 {
	if p.ComparePrice != nil {
		return *p.ComparePrice
	}
	return p.Price
}

// ProductPatch carries a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Name         *string  `json:"name,omitempty"`
	Category     *string  `json:"category,omitempty"`
	Subcategory  *string  `json:"subcategory,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	ComparePrice *float64 `json:"comparePrice,omitempty"`
	Stock        *int     `json:"stock,omitempty"`
	SKU          *string  `json:"sku,omitempty"`
	Image        *string  `json:"image,omitempty"`
	Description  *string  `json:"description,omitempty"`
	ABV          *float64 `json:"abv,omitempty"`
	Volume       *string  `json:"volume,omitempty"`
	Featured     *bool    `json:"featured,omitempty"`
}

func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Subcategory != nil {
		p.Subcategory = *pp.Subcategory
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.ComparePrice != nil {
		v := *pp.ComparePrice
		p.ComparePrice = &v
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	if pp.SKU != nil {
		p.SKU = *pp.SKU
	}
	if pp.Image != nil {
		p.Image = *pp.Image
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.ABV != nil {
		v := *pp.ABV
		p.ABV = &v
	}
	if pp.Volume != nil {
		v := *pp.Volume
		p.Volume = &v
	}
	if pp.Featured != nil {
		p.Featured = *pp.Featured
	}
}

// CartItem is a snapshot of a product taken when it was added to the cart.
// Orders keep the same shape for their line items.
type CartItem struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

type OrderItem = CartItem

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusOutForDelivery OrderStatus = "out-for-delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

type Order struct {
	ID              string      `json:"id"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	CustomerPhone   string      `json:"customerPhone"`
	DeliveryAddress string      `json:"deliveryAddress"`
	Items           []OrderItem `json:"items"`
	Total           float64     `json:"total"`
	Status          OrderStatus `json:"status"`
	Date            time.Time   `json:"date"`
}

// ContactDetails is what the checkout form hands to the store.
type ContactDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type Layout string

const (
	LayoutGrid Layout = "grid"
	LayoutList Layout = "list"
)

type StoreConfig struct {
	StoreName       string `json:"storeName"`
	Currency        string `json:"currency"`
	PrimaryColor    string `json:"primaryColor"` // hex code
	Layout          Layout `json:"layout"`
	HeroImage       string `json:"heroImage"`
	HeroHeadline    string `json:"heroHeadline"`
	HeroSubheadline string `json:"heroSubheadline"`
	ContactEmail    string `json:"contactEmail"`
	ContactPhone    string `json:"contactPhone"`
}

type ConfigPatch struct {
	StoreName       *string `json:"storeName,omitempty"`
	Currency        *string `json:"currency,omitempty"`
	PrimaryColor    *string `json:"primaryColor,omitempty"`
	Layout          *Layout `json:"layout,omitempty"`
	HeroImage       *string `json:"heroImage,omitempty"`
	HeroHeadline    *string `json:"heroHeadline,omitempty"`
	HeroSubheadline *string `json:"heroSubheadline,omitempty"`
	ContactEmail    *string `json:"contactEmail,omitempty"`
	ContactPhone    *string `json:"contactPhone,omitempty"`
}

func (cp ConfigPatch) Apply(c *StoreConfig) {
	if cp.StoreName != nil {
		c.StoreName = *cp.StoreName
	}
	if cp.Currency != nil {
		c.Currency = *cp.Currency
	}
	if cp.PrimaryColor != nil {
		c.PrimaryColor = *cp.PrimaryColor
	}
	if cp.Layout != nil {
		c.Layout = *cp.Layout
	}
	if cp.HeroImage != nil {
		c.HeroImage = *cp.HeroImage
	}
	if cp.HeroHeadline != nil {
		c.HeroHeadline = *cp.HeroHeadline
	}
	if cp.HeroSubheadline != nil {
		c.HeroSubheadline = *cp.HeroSubheadline
	}
	if cp.ContactEmail != nil {
		c.ContactEmail = *cp.ContactEmail
	}
	if cp.ContactPhone != nil {
		c.ContactPhone = *cp.ContactPhone
	}
}
