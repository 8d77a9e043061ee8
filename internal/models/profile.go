// internal/models/profile.go
package models

import (
	"strings"
	"time"
)

// StyleProfile is what the profile store persists per user.
type StyleProfile struct {
	UserID       string    `json:"user_id"`
	StyleProfile string    `json:"style_profile"`
	Wardrobe     string    `json:"wardrobe"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Complete reports whether both free-text fields carry something.
func (p *StyleProfile) Complete() bool {
	if p == nil {
		return false
	}
	return strings.TrimSpace(p.StyleProfile) != "" && strings.TrimSpace(p.Wardrobe) != ""
}
