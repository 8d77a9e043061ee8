// Package ranking orders annotated catalog items by their stylist notes.
package ranking

import (
	"fmt"
	"sort"

	"storefront-stylist/internal/models"
)

// Scored is an item together with the keys it was ranked by.
type Scored struct {
	Item          models.AnnotatedItem `json:"item"`
	CombinedScore int                  `json:"combinedScore"`
	StyleWeight   int                  `json:"styleWeight"`
}

// CombinedScore is the sum of both axis weights, in [2, 6].
func CombinedScore(item models.AnnotatedItem) (int, error) {
	s, err := score(item)
	if err != nil {
		return 0, err
	}
	return s.CombinedScore, nil
}

func score(item models.AnnotatedItem) (Scored, error) {
	style, err := item.StylistNotes.StyleMatch.Weight()
	if err != nil {
		return Scored{}, fmt.Errorf("item %d style_match: %w", item.ID, err)
	}
	wardrobe, err := item.StylistNotes.WardrobeCompatibility.Weight()
	if err != nil {
		return Scored{}, fmt.Errorf("item %d wardrobe_compatibility: %w", item.ID, err)
	}
	return Scored{Item: item, CombinedScore: style + wardrobe, StyleWeight: style}, nil
}

// Less reports whether a ranks before b. Both items must carry valid ratings.
func Less(a, b models.AnnotatedItem) bool {
	sa, _ := score(a)
	sb, _ := score(b)
	return before(sa, sb)
}

func before(a, b Scored) bool {
	if a.CombinedScore != b.CombinedScore {
		return a.CombinedScore > b.CombinedScore
	}
	return a.StyleWeight > b.StyleWeight
}

// Score validates and scores every item, then returns them ranked.
// Items equal on both keys keep their input order.
func Score(items []models.AnnotatedItem) ([]Scored, error) {
	scored := make([]Scored, len(items))
	for i, it := range items {
		s, err := score(it)
		if err != nil {
			return nil, err
		}
		scored[i] = s
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return before(scored[i], scored[j])
	})
	return scored, nil
}

// Rank returns a new slice holding items ordered by combined score
// descending, then style weight descending. The input is left untouched.
func Rank(items []models.AnnotatedItem) ([]models.AnnotatedItem, error) {
	scored, err := Score(items)
	if err != nil {
		return nil, err
	}
	out := make([]models.AnnotatedItem, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out, nil
}
