package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"character-image-generator/backend/ai"
	"character-image-generator/backend/internal/models"
	"character-image-generator/backend/internal/repository"
	"character-image-generator/backend/pkg/errors"
	"character-image-generator/backend/pkg/logger"
	"character-image-generator/backend/pkg/ws"
)

// DefaultMaxGenerateCount caps images per generate request.
const DefaultMaxGenerateCount = 10

// ImageGenerator produces count image URLs for a prompt; it never fails.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, count int) []ai.GeneratedURL
}

// CharacterGetter resolves a character or returns a not-found AppError.
type CharacterGetter interface {
	Get(ctx context.Context, id string) (*models.Character, error)
}

type ImageService struct {
	images     repository.ImageRepository
	characters CharacterGetter
	generator  ImageGenerator
	maxCount   int
	events     ws.Publisher
	log        *logger.Logger
	now        func() time.Time
}

func NewImageService(images repository.ImageRepository, characters CharacterGetter, generator ImageGenerator, maxCount int, events ws.Publisher, log *logger.Logger) *ImageService {
	if maxCount < 1 {
		maxCount = DefaultMaxGenerateCount
	}
	if events == nil {
		events = ws.NopPublisher{}
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	return &ImageService{
		images:     images,
		characters: characters,
		generator:  generator,
		maxCount:   maxCount,
		events:     events,
		log:        log.WithComponent("image-service"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GenerateForCharacter renders count version-1 images from the character's
// stored prompt. A nil count means one image.
func (s *ImageService) GenerateForCharacter(ctx context.Context, characterID string, count *int) ([]models.GeneratedImage, error) {
	n := 1
	if count != nil {
		n = *count
	}
	if n < 1 || n > s.maxCount {
		return nil, errors.NewValidationError("count", fmt.Sprintf("Count must be between 1 and %d", s.maxCount))
	}

	character, err := s.characters.Get(ctx, characterID)
	if err != nil {
		return nil, err
	}

	results := s.generator.Generate(ctx, character.Prompt, n)

	now := s.now()
	records := make([]*models.GeneratedImage, len(results))
	for i, r := range results {
		records[i] = &models.GeneratedImage{
			ID:            newID(),
			CharacterID:   character.ID,
			ImageURL:      r.URL,
			Version:       1,
			RefinedPrompt: character.Prompt,
			Source:        r.Source,
			CreatedAt:     now,
		}
	}

	if err := s.images.CreateBatch(ctx, records); err != nil {
		return nil, fmt.Errorf("store generated images: %w", err)
	}

	images := make([]models.GeneratedImage, len(records))
	for i, rec := range records {
		images[i] = *rec
		s.publish(ws.EventImageCreated, images[i])
	}

	s.log.Info("Images generated", "characterId", character.ID, "count", len(images))
	return images, nil
}

// Refine renders one new image from refinedPrompt as the next version of
// imageID. The source image is not modified.
func (s *ImageService) Refine(ctx context.Context, imageID, refinedPrompt string) (*models.GeneratedImage, error) {
	refinedPrompt = strings.TrimSpace(refinedPrompt)
	if refinedPrompt == "" {
		return nil, errors.NewValidationError("refinedPrompt", "Refined prompt is required")
	}

	source, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return nil, imageLookupError(imageID, err)
	}

	result := s.generator.Generate(ctx, refinedPrompt, 1)[0]

	parentID := source.ID
	refined := &models.GeneratedImage{
		ID:            newID(),
		CharacterID:   source.CharacterID,
		ParentID:      &parentID,
		ImageURL:      result.URL,
		Version:       source.Version + 1,
		RefinedPrompt: refinedPrompt,
		Source:        result.Source,
		CreatedAt:     s.now(),
	}
	if err := s.images.Create(ctx, refined); err != nil {
		return nil, fmt.Errorf("store refined image: %w", err)
	}

	s.publish(ws.EventImageCreated, *refined)
	s.log.Info("Image refined", "imageId", refined.ID, "parentId", source.ID, "version", refined.Version)
	return refined, nil
}

// ToggleFavorite flips the favorite flag and returns the updated image.
func (s *ImageService) ToggleFavorite(ctx context.Context, id string) (*models.GeneratedImage, error) {
	image, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, imageLookupError(id, err)
	}

	image.IsFavorite = !image.IsFavorite
	if err := s.images.SetFavorite(ctx, id, image.IsFavorite); err != nil {
		return nil, imageLookupError(id, err)
	}

	s.publish(ws.EventImageUpdated, *image)
	return image, nil
}

func (s *ImageService) Get(ctx context.Context, id string) (*models.GeneratedImage, error) {
	image, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, imageLookupError(id, err)
	}
	return image, nil
}

// ListByCharacter returns a character's images, newest first. Unknown
// characters yield an empty list.
func (s *ImageService) ListByCharacter(ctx context.Context, characterID string) ([]models.GeneratedImage, error) {
	images, err := s.images.ListByCharacter(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("list images for character %s: %w", characterID, err)
	}
	return images, nil
}

// ListAll returns every image, newest first.
func (s *ImageService) ListAll(ctx context.Context) ([]models.GeneratedImage, error) {
	images, err := s.images.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

func (s *ImageService) publish(eventType string, image models.GeneratedImage) {
	s.events.Publish(ws.Event{Type: eventType, CharacterID: image.CharacterID, Payload: image})
}

func imageLookupError(id string, err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NewNotFoundError(errors.CodeImageNotFound, "Image not found").
			WithDetails(map[string]string{"id": id})
	}
	return fmt.Errorf("image %s: %w", id, err)
}
