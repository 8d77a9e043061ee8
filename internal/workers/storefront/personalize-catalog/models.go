// internal/workers/storefront/personalize-catalog/models.go
package personalizecatalog

import "storefront-stylist/internal/models"

type Input struct {
	UserID       string               `json:"userId"`
	StyleProfile string               `json:"styleProfile"`
	Wardrobe     string               `json:"wardrobe"`
	Products     []models.CatalogItem `json:"products,omitempty"`
}

type Output struct {
	RankedProducts []models.AnnotatedItem `json:"rankedProducts"`
	TopProductID   int                    `json:"topProductId,omitempty"`
	ItemCount      int                    `json:"itemCount"`
}
