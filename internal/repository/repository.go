// Package repository persists characters and generated images.
package repository

import (
	"context"
	"errors"

	"character-image-generator/backend/internal/models"
)

// ErrNotFound is returned when an id does not resolve to a record.
var ErrNotFound = errors.New("record not found")

type CharacterRepository interface {
	Create(ctx context.Context, character *models.Character) error
	GetByID(ctx context.Context, id string) (*models.Character, error)
	// List returns every character, newest first.
	List(ctx context.Context) ([]models.Character, error)
	Update(ctx context.Context, character *models.Character) error
	Delete(ctx context.Context, id string) error
}

type ImageRepository interface {
	Create(ctx context.Context, image *models.GeneratedImage) error
	CreateBatch(ctx context.Context, images []*models.GeneratedImage) error
	GetByID(ctx context.Context, id string) (*models.GeneratedImage, error)
	// ListByCharacter returns a character's images, newest first.
	ListByCharacter(ctx context.Context, characterID string) ([]models.GeneratedImage, error)
	// List returns all images, newest first.
	List(ctx context.Context) ([]models.GeneratedImage, error)
	// SetFavorite updates only the favorite flag.
	SetFavorite(ctx context.Context, id string, favorite bool) error
}
