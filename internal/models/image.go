package models

import (
	"time"
)

// ImageSource tells whether an image URL came from the model or is a fallback.
type ImageSource string

const (
	ImageSourceModel       ImageSource = "model"
	ImageSourcePlaceholder ImageSource = "placeholder"
)

// GeneratedImage is one rendered output linked to a character. Records are
// never deleted; only IsFavorite changes after creation.
type GeneratedImage struct {
	ID            string      `json:"id" gorm:"type:uuid;primaryKey"`
	CharacterID   string      `json:"characterId" gorm:"type:uuid;index;not null"`
	ParentID      *string     `json:"parentId,omitempty" gorm:"type:uuid"`
	ImageURL      string      `json:"imageUrl" gorm:"not null"`
	IsFavorite    bool        `json:"isFavorite" gorm:"not null;default:false"`
	Version       int         `json:"version" gorm:"not null;default:1"`
	RefinedPrompt string      `json:"refinedPrompt"`
	Source        ImageSource `json:"source" gorm:"type:varchar(16)"`
	CreatedAt     time.Time   `json:"createdAt" gorm:"index"`
}

// TableName pins the table name.
func (GeneratedImage) TableName() string {
	return "generated_images"
}

type GenerateImagesRequest struct {
	Count *int `json:"count"`
}

type RefineImageRequest struct {
	RefinedPrompt string `json:"refinedPrompt"`
}
