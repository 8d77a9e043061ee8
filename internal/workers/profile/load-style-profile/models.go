// internal/workers/profile/load-style-profile/models.go
package loadstyleprofile

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	Found        bool   `json:"found"`
	StyleProfile string `json:"styleProfile"`
	Wardrobe     string `json:"wardrobe"`
	Complete     bool   `json:"complete"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}
