package repository

import (
	"context"
	"errors"
	"fmt"

	"character-image-generator/backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables and secondary indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Character{}, &models.GeneratedImage{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_images_character_created ON generated_images(character_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_characters_created ON characters(created_at DESC)",
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

type GormCharacterRepository struct {
	db *gorm.DB
}

func NewGormCharacterRepository(db *gorm.DB) *GormCharacterRepository {
	return &GormCharacterRepository{db: db}
}

func (r *GormCharacterRepository) Create(ctx context.Context, character *models.Character) error {
	return r.db.WithContext(ctx).Create(character).Error
}

func (r *GormCharacterRepository) GetByID(ctx context.Context, id string) (*models.Character, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	var character models.Character
	err := r.db.WithContext(ctx).First(&character, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &character, nil
}

func (r *GormCharacterRepository) List(ctx context.Context) ([]models.Character, error) {
	characters := []models.Character{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&characters).Error
	return characters, err
}

func (r *GormCharacterRepository) Update(ctx context.Context, character *models.Character) error {
	if !isUUID(character.ID) {
		return ErrNotFound
	}
	// Select("*") so cleared attributes are written back as empty values.
	result := r.db.WithContext(ctx).
		Model(&models.Character{}).
		Where("id = ?", character.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(character)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormCharacterRepository) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	result := r.db.WithContext(ctx).Delete(&models.Character{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type GormImageRepository struct {
	db *gorm.DB
}

func NewGormImageRepository(db *gorm.DB) *GormImageRepository {
	return &GormImageRepository{db: db}
}

func (r *GormImageRepository) Create(ctx context.Context, image *models.GeneratedImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *GormImageRepository) CreateBatch(ctx context.Context, images []*models.GeneratedImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(images).Error
}

func (r *GormImageRepository) GetByID(ctx context.Context, id string) (*models.GeneratedImage, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	var image models.GeneratedImage
	err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &image, nil
}

func (r *GormImageRepository) ListByCharacter(ctx context.Context, characterID string) ([]models.GeneratedImage, error) {
	images := []models.GeneratedImage{}
	if !isUUID(characterID) {
		return images, nil
	}
	err := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("created_at DESC").
		Find(&images).Error
	return images, err
}

func (r *GormImageRepository) List(ctx context.Context) ([]models.GeneratedImage, error) {
	images := []models.GeneratedImage{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&images).Error
	return images, err
}

func (r *GormImageRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	result := r.db.WithContext(ctx).
		Model(&models.GeneratedImage{}).
		Where("id = ?", id).
		Update("is_favorite", favorite)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// isUUID guards uuid columns; postgres rejects malformed literals with an error
// rather than matching nothing.
func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}
