// internal/workers/profile/save-style-profile/models.go
package savestyleprofile

type Input struct {
	UserID       string `json:"userId" validate:"required,max=128"`
	StyleProfile string `json:"styleProfile" validate:"max=4000"`
	Wardrobe     string `json:"wardrobe" validate:"max=4000"`
}

type Output struct {
	Saved   bool   `json:"saved"`
	SavedAt string `json:"savedAt"`
}
