// internal/workers/storefront/rank-annotated-products/models.go
package rankannotatedproducts

import "storefront-stylist/internal/models"

type Input struct {
	Products []models.AnnotatedItem `json:"products"`
}

type Output struct {
	RankedProducts []models.AnnotatedItem `json:"rankedProducts"`
	Scores         []ProductScore         `json:"scores"`
}

type ProductScore struct {
	ID            int `json:"id"`
	CombinedScore int `json:"combinedScore"`
	StyleWeight   int `json:"styleWeight"`
}
