package models

import (
	"strings"
	"time"
)

// Primary colour presets offered by the storefront customizer.
const (
	ColorNavy     = "#0D3B66"
	ColorBurgundy = "#8C2F39"
	ColorEmerald  = "#2E8B57"
	ColorAmber    = "#D4A017"
	ColorPlum     = "#6A4C93"
	ColorTeal     = "#20B2AA"
	ColorRust     = "#B7410E"
	ColorCharcoal = "#495057"
)

type ColorPreset struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ColorPresets are listed in the order the customizer shows them.
var ColorPresets = []ColorPreset{
	{Name: "Navy", Color: ColorNavy},
	{Name: "Burgundy", Color: ColorBurgundy},
	{Name: "Emerald", Color: ColorEmerald},
	{Name: "Amber", Color: ColorAmber},
	{Name: "Plum", Color: ColorPlum},
	{Name: "Teal", Color: ColorTeal},
	{Name: "Rust", Color: ColorRust},
	{Name: "Charcoal", Color: ColorCharcoal},
}

// PresetColor looks up a preset by name, ignoring case.
func PresetColor(name string) (string, bool) {
	for _, p := range ColorPresets {
		if strings.EqualFold(p.Name, name) {
			return p.Color, true
		}
	}
	return "", false
}

const (
	imgWhiskey  = "https://images.unsplash.com/photo-1527281400683-1aae777175f8?auto=format&fit=crop&q=80&w=400"
	imgGin      = "https://images.unsplash.com/photo-1563223771-332305545f74?auto=format&fit=crop&q=80&w=400"
	imgIPA      = "https://images.unsplash.com/photo-1623594225324-42721869e94d?auto=format&fit=crop&q=80&w=400"
	imgCabernet = "https://images.unsplash.com/photo-1559563362-c667ba5f5480?auto=format&fit=crop&q=80&w=400"
	imgTequila  = "https://images.unsplash.com/photo-1556679343-c7306c1976bc?auto=format&fit=crop&q=80&w=400"
	imgLager    = "https://images.unsplash.com/photo-1608270586620-248524c67de9?auto=format&fit=crop&q=80&w=400"
)

func DefaultConfig() StoreConfig {
	return StoreConfig{
		StoreName:       "SpiritFlow Liquors",
		Currency:        "£",
		PrimaryColor:    ColorNavy,
		Layout:          LayoutGrid,
		HeroImage:       "https://images.unsplash.com/photo-1569937756447-e24e5256e409?auto=format&fit=crop&q=80&w=2000",
		HeroHeadline:    "Premium Spirits Delivered",
		HeroSubheadline: "From top shelf to your door in under 60 minutes.",
		ContactEmail:    "support@spiritflow.com",
		ContactPhone:    "(555) 123-4567",
	}
}

func ptr[T any](v T) *T { return &v }

// DefaultProducts returns a fresh copy of the seed catalog.
func DefaultProducts() []Product {
	return []Product{
		{
			ID: 1, Name: "Golden Reserve Whiskey", Category: "Spirits", Subcategory: "Whiskey",
			Price: 45.99, Stock: 24, SKU: "WHK-001", Image: imgWhiskey,
			Description: "A smooth, aged whiskey with notes of vanilla and oak.",
			ABV: ptr(40.0), Volume: ptr("750ml"), Featured: true,
		},
		{
			ID: 2, Name: "Coastal Gin", Category: "Spirits", Subcategory: "Gin",
			Price: 32.50, ComparePrice: ptr(38.00), Stock: 12, SKU: "GIN-002", Image: imgGin,
			Description: "Botanical gin distilled with coastal herbs.",
			ABV: ptr(42.0), Volume: ptr("750ml"), Featured: true,
		},
		{
			ID: 3, Name: "Craft IPA 6-Pack", Category: "Beer", Subcategory: "IPA",
			Price: 12.99, Stock: 100, SKU: "BER-003", Image: imgIPA,
			Description: "Hoppy and refreshing local craft brew.",
			ABV: ptr(6.5), Volume: ptr("6 x 355ml"),
		},
		{
			ID: 4, Name: "Vintage Cabernet", Category: "Wine", Subcategory: "Red",
			Price: 28.00, Stock: 8, SKU: "WIN-004", Image: imgCabernet,
			Description: "Full-bodied red wine from Napa Valley.",
			ABV: ptr(13.5), Volume: ptr("750ml"), Featured: true,
		},
		{
			ID: 5, Name: "Silver Tequila", Category: "Spirits", Subcategory: "Tequila",
			Price: 49.99, Stock: 18, SKU: "TEQ-005", Image: imgTequila,
			Description: "Crisp agave tequila perfect for margaritas.",
			ABV: ptr(40.0), Volume: ptr("750ml"),
		},
		{
			ID: 6, Name: "Japanese Lager", Category: "Beer", Subcategory: "Lager",
			Price: 9.99, Stock: 150, SKU: "BER-006", Image: imgLager,
			Description: "Dry and crisp rice lager.",
			ABV: ptr(5.0), Volume: ptr("6 x 330ml"),
		},
	}
}

// DefaultOrders returns the seed order history, newest first.
func DefaultOrders() []Order {
	return []Order{
		{
			ID:              "ORD-1001",
			CustomerName:    "Alex Johnson",
			CustomerEmail:   "alex@example.com",
			CustomerPhone:   "(555) 987-6543",
			DeliveryAddress: "123 Maple Ave, Apt 4B",
			Date:            time.Date(2023, 10, 25, 14, 30, 0, 0, time.UTC),
			Status:          StatusPending,
			Total:           58.98,
			Items: []OrderItem{
				{ProductID: 1, Name: "Golden Reserve Whiskey", Price: 45.99, Quantity: 1, Image: imgWhiskey},
				{ProductID: 3, Name: "Craft IPA 6-Pack", Price: 12.99, Quantity: 1, Image: imgIPA},
			},
		},
		{
			ID:              "ORD-1002",
			CustomerName:    "Sarah Smith",
			CustomerEmail:   "sarah@example.com",
			CustomerPhone:   "(555) 111-2222",
			DeliveryAddress: "45 Oak Lane",
			Date:            time.Date(2023, 10, 25, 12, 15, 0, 0, time.UTC),
			Status:          StatusDelivered,
			Total:           32.50,
			Items: []OrderItem{
				{ProductID: 2, Name: "Coastal Gin", Price: 32.50, Quantity: 1, Image: imgGin},
			},
		},
		{
			ID:              "ORD-1003",
			CustomerName:    "Mike Brown",
			CustomerEmail:   "mike@example.com",
			CustomerPhone:   "(555) 333-4444",
			DeliveryAddress: "789 Pine St",
			Date:            time.Date(2023, 10, 24, 18, 45, 0, 0, time.UTC),
			Status:          StatusProcessing,
			Total:           28.00,
			Items: []OrderItem{
				{ProductID: 4, Name: "Vintage Cabernet", Price: 28.00, Quantity: 1, Image: imgCabernet},
			},
		},
	}
}
