// internal/models/rating.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMatchRating is returned for any rating outside {Low, Medium, High}.
var ErrInvalidMatchRating = errors.New("INVALID_MATCH_RATING")

// MatchRating is an ordinal judgment along one axis. The zero value is not a
// valid rating.
type MatchRating int

const (
	RatingLow MatchRating = iota + 1
	RatingMedium
	RatingHigh
)

// ParseMatchRating accepts exactly "Low", "Medium" or "High".
func ParseMatchRating(s string) (MatchRating, error) {
	switch s {
	case "Low":
		return RatingLow, nil
	case "Medium":
		return RatingMedium, nil
	case "High":
		return RatingHigh, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMatchRating, s)
	}
}

// Weight maps High to 3, Medium to 2 and Low to 1.
func (r MatchRating) Weight() (int, error) {
	switch r {
	case RatingHigh:
		return 3, nil
	case RatingMedium:
		return 2, nil
	case RatingLow:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidMatchRating, int(r))
	}
}

func (r MatchRating) Valid() bool {
	_, err := r.Weight()
	return err == nil
}

func (r MatchRating) String() string {
	switch r {
	case RatingHigh:
		return "High"
	case RatingMedium:
		return "Medium"
	case RatingLow:
		return "Low"
	default:
		return fmt.Sprintf("MatchRating(%d)", int(r))
	}
}

// BadgeClass is the lower-case form used for badge styling.
func (r MatchRating) BadgeClass() string {
	return strings.ToLower(r.String())
}

func (r MatchRating) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMatchRating, int(r))
	}
	return json.Marshal(r.String())
}

func (r *MatchRating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMatchRating, string(data))
	}
	parsed, err := ParseMatchRating(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
