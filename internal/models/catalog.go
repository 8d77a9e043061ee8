// internal/models/catalog.go
package models

// CatalogItem is one product of the storefront catalog.
type CatalogItem struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// StylistNotes is the per-item judgment returned by the personalization service.
type StylistNotes struct {
	StyleMatch            MatchRating `json:"style_match"`
	WardrobeCompatibility MatchRating `json:"wardrobe_compatibility"`
	Reason                string      `json:"reason"`
}

// AnnotatedItem is a catalog item enriched with stylist notes. It only lives
// for the duration of one personalization request.
type AnnotatedItem struct {
	CatalogItem
	StylistNotes StylistNotes `json:"stylist_notes"`
}

func IDs(items []AnnotatedItem) []int {
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
