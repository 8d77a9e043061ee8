package storefront

import (
	"fmt"

	"storefront-stylist/internal/models"
)

// ViewState is everything the page depends on.
type ViewState struct {
	Catalog      []models.CatalogItem
	Ranked       []models.AnnotatedItem
	Request      RequestState
	StyleProfile string
	Wardrobe     string
	Alert        string
}

// Personalized reports whether the view shows service-annotated items.
func (v ViewState) Personalized() bool {
	return v.Ranked != nil
}

type Page struct {
	Loading         bool   `json:"loading"`
	ControlEnabled  bool   `json:"control_enabled"`
	ProductsVisible bool   `json:"products_visible"`
	Personalized    bool   `json:"personalized"`
	RequestState    string `json:"request_state"`
	StyleProfile    string `json:"style_profile"`
	Wardrobe        string `json:"wardrobe"`
	Alert           string `json:"alert,omitempty"`
	Cards           []Card `json:"cards"`
}

type Card struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       string  `json:"price"`
	Description string  `json:"description"`
	Badges      []Badge `json:"badges,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

// Annotated reports whether the card carries stylist notes.
func (c Card) Annotated() bool {
	return len(c.Badges) > 0
}

type Badge struct {
	Label string `json:"label"`
	Class string `json:"class"`
}

// Render maps a view state to display instructions. It has no side effects.
func Render(v ViewState) Page {
	page := Page{
		Loading:         v.Request.Loading(),
		ControlEnabled:  v.Request.ControlEnabled(),
		ProductsVisible: !v.Request.Loading(),
		Personalized:    v.Personalized(),
		RequestState:    v.Request.String(),
		StyleProfile:    v.StyleProfile,
		Wardrobe:        v.Wardrobe,
		Alert:           v.Alert,
	}

	if v.Personalized() {
		page.Cards = make([]Card, 0, len(v.Ranked))
		for _, item := range v.Ranked {
			page.Cards = append(page.Cards, annotatedCard(item))
		}
		return page
	}

	page.Cards = make([]Card, 0, len(v.Catalog))
	for _, item := range v.Catalog {
		page.Cards = append(page.Cards, plainCard(item))
	}
	return page
}

func plainCard(item models.CatalogItem) Card {
	return Card{
		ID:          item.ID,
		Name:        item.Name,
		Price:       FormatPrice(item.Price),
		Description: item.Description,
	}
}

func annotatedCard(item models.AnnotatedItem) Card {
	card := plainCard(item.CatalogItem)
	notes := item.StylistNotes
	card.Badges = []Badge{
		{Label: "Style: " + notes.StyleMatch.String(), Class: notes.StyleMatch.BadgeClass()},
		{Label: "Wardrobe: " + notes.WardrobeCompatibility.String(), Class: notes.WardrobeCompatibility.BadgeClass()},
	}
	card.Reason = notes.Reason
	return card
}

func FormatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}
