package models

import (
	"time"
)

// Attributes are the optional structured traits of a character. Every field
// is open-ended; AttributeOptions lists the values the UI suggests.
type Attributes struct {
	Age     *int   `json:"age,omitempty"`
	Gender  string `json:"gender,omitempty"`
	Emotion string `json:"emotion,omitempty"`
	Genre   string `json:"genre,omitempty"`
	Style   string `json:"style,omitempty"`
}

// Character is a user-authored description plus attributes and the
// generation prompt derived from them.
type Character struct {
	ID          string     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string     `json:"userId,omitempty" gorm:"index"`
	Name        string     `json:"name" gorm:"not null"`
	Description string     `json:"description" gorm:"not null"`
	Attributes  Attributes `json:"attributes" gorm:"embedded;embeddedPrefix:attr_"`
	Prompt      string     `json:"prompt" gorm:"not null"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CreateCharacterRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Attributes  *Attributes `json:"attributes"`
}

// UpdateCharacterRequest is a partial update; nil fields keep their stored value.
type UpdateCharacterRequest struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	Attributes  *Attributes `json:"attributes"`
}

// AttributeOptions are the suggested values offered by the character form.
// They are not enforced server-side.
type AttributeOptions struct {
	Genders  []string `json:"genders"`
	Emotions []string `json:"emotions"`
	Genres   []string `json:"genres"`
	Styles   []string `json:"styles"`
	MinAge   int      `json:"minAge"`
	MaxAge   int      `json:"maxAge"`
}

const (
	MinCharacterAge = 1
	MaxCharacterAge = 1000
)

// DefaultAttributeOptions returns the suggestion lists shown by the UI.
func DefaultAttributeOptions() AttributeOptions {
	return AttributeOptions{
		Genders:  []string{"Male", "Female", "Non-binary", "Other"},
		Emotions: []string{"Happy", "Sad", "Angry", "Surprised", "Neutral", "Confident", "Fearful", "Proud"},
		Genres:   []string{"Fantasy", "Sci-Fi", "Modern", "Historical", "Anime", "Superhero", "Cyberpunk", "Steampunk", "Post-apocalyptic"},
		Styles:   []string{"Realistic", "Anime", "Cartoon", "Pixel Art", "Watercolor", "Oil Painting", "Digital Art", "Comic Book", "Photorealistic"},
		MinAge:   MinCharacterAge,
		MaxAge:   MaxCharacterAge,
	}
}
