// Package catalog holds the fixed product list sent along with every
// personalization request.
package catalog

import "storefront-stylist/internal/models"

// Source provides the products shown on the storefront.
type Source interface {
	Products() []models.CatalogItem
}

// Static serves a fixed list. Products returns a copy on every call.
type Static struct {
	items []models.CatalogItem
}

func NewStatic(items []models.CatalogItem) *Static {
	cp := make([]models.CatalogItem, len(items))
	copy(cp, items)
	return &Static{items: cp}
}

func (s *Static) Products() []models.CatalogItem {
	cp := make([]models.CatalogItem, len(s.items))
	copy(cp, s.items)
	return cp
}

// Default returns the storefront's 15-item catalog.
func Default() *Static {
	return NewStatic(defaultItems)
}

var defaultItems = []models.CatalogItem{
	{ID: 1, Name: "Vintage Band T-Shirt", Description: "A soft, faded black cotton t-shirt with a retro band logo.", Price: 29.99},
	{ID: 2, Name: "Dark Selvedge Denim Jeans", Description: "Classic straight-fit jeans in deep indigo with selvedge detailing.", Price: 89.99},
	{ID: 3, Name: "Leather Combat Boots", Description: "Genuine leather boots with chunky sole and lace-up design.", Price: 149.99},
	{ID: 4, Name: "Minimalist White Sneakers", Description: "Clean, simple white canvas sneakers with rubber sole.", Price: 59.99},
	{ID: 5, Name: "Oversized Flannel Shirt", Description: "Comfortable red and black plaid flannel shirt, perfect for layering.", Price: 44.99},
	{ID: 6, Name: "Black Slim-Fit Chinos", Description: "Modern black chinos with stretch fabric and tapered leg.", Price: 69.99},
	{ID: 7, Name: "Vintage Denim Jacket", Description: "Classic blue denim jacket with worn-in look and metal buttons.", Price: 79.99},
	{ID: 8, Name: "Brown Leather Belt", Description: "Genuine leather belt with classic buckle, 1.5 inches wide.", Price: 34.99},
	{ID: 9, Name: "Graphic Print Hoodie", Description: "Comfortable gray hoodie with bold graphic print on front.", Price: 54.99},
	{ID: 10, Name: "Cargo Pants", Description: "Olive green cargo pants with multiple pockets and relaxed fit.", Price: 64.99},
	{ID: 11, Name: "Canvas Backpack", Description: "Durable canvas backpack with leather straps and multiple compartments.", Price: 49.99},
	{ID: 12, Name: "Wool Beanie", Description: "Warm gray wool beanie, perfect for cold weather.", Price: 19.99},
	{ID: 13, Name: "Plaid Button-Down Shirt", Description: "Classic blue and white plaid shirt, perfect for casual or smart-casual looks.", Price: 39.99},
	{ID: 14, Name: "High-Top Sneakers", Description: "Black high-top sneakers with white sole and retro styling.", Price: 74.99},
	{ID: 15, Name: "Corduroy Jacket", Description: "Brown corduroy jacket with ribbed texture and button closure.", Price: 84.99},
}
