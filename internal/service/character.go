// Package service holds the character and image business rules.
package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"character-image-generator/backend/internal/models"
	"character-image-generator/backend/internal/prompt"
	"character-image-generator/backend/internal/repository"
	"character-image-generator/backend/pkg/cache"
	"character-image-generator/backend/pkg/errors"
	"character-image-generator/backend/pkg/logger"
	"character-image-generator/backend/pkg/ws"
)

const characterCachePrefix = "character:"

type CharacterService struct {
	repo     repository.CharacterRepository
	cache    cache.Store
	cacheTTL time.Duration
	events   ws.Publisher
	log      *logger.Logger
	now      func() time.Time
}

// NewCharacterService wires the service. store and events may be nil.
func NewCharacterService(repo repository.CharacterRepository, store cache.Store, cacheTTL time.Duration, events ws.Publisher, log *logger.Logger) *CharacterService {
	if events == nil {
		events = ws.NopPublisher{}
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	return &CharacterService{
		repo:     repo,
		cache:    store,
		cacheTTL: cacheTTL,
		events:   events,
		log:      log.WithComponent("character-service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *CharacterService) Create(ctx context.Context, req *models.CreateCharacterRequest, ownerID string) (*models.Character, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "Name is required")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, errors.NewValidationError("description", "Description is required")
	}

	var attrs models.Attributes
	if req.Attributes != nil {
		attrs = *req.Attributes
	}
	if err := validateAttributes(attrs); err != nil {
		return nil, err
	}

	now := s.now()
	character := &models.Character{
		ID:          newID(),
		UserID:      ownerID,
		Name:        name,
		Description: description,
		Attributes:  attrs,
		Prompt:      prompt.ForCharacter(description, attrs),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, character); err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}

	s.log.Info("Character created", "characterId", character.ID)
	return character, nil
}

// Get reads through the cache.
func (s *CharacterService) Get(ctx context.Context, id string) (*models.Character, error) {
	if s.cache != nil {
		cached, found, err := cache.GetJSON[models.Character](ctx, s.cache, characterCachePrefix+id)
		if err != nil {
			s.log.Warn("Character cache read failed", "characterId", id, "error", err.Error())
		} else if found {
			return cached, nil
		}
	}

	character, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, characterLookupError(id, err)
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, characterCachePrefix+id, character, s.cacheTTL); err != nil {
			s.log.Warn("Character cache write failed", "characterId", id, "error", err.Error())
		}
	}
	return character, nil
}

// List returns every character, newest first.
func (s *CharacterService) List(ctx context.Context) ([]models.Character, error) {
	characters, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	return characters, nil
}

// Update applies a partial update. Omitted fields keep their stored value;
// the prompt is always recomputed from the result.
func (s *CharacterService) Update(ctx context.Context, id string, req *models.UpdateCharacterRequest) (*models.Character, error) {
	character, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, characterLookupError(id, err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errors.NewValidationError("name", "Name cannot be empty")
		}
		character.Name = name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, errors.NewValidationError("description", "Description cannot be empty")
		}
		character.Description = description
	}
	if req.Attributes != nil {
		if err := validateAttributes(*req.Attributes); err != nil {
			return nil, err
		}
		character.Attributes = *req.Attributes
	}

	character.Prompt = prompt.ForCharacter(character.Description, character.Attributes)
	character.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, character); err != nil {
		return nil, characterLookupError(id, err)
	}
	s.invalidate(ctx, id)

	return character, nil
}

// Delete removes the character. Its images are left in place.
func (s *CharacterService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return characterLookupError(id, err)
	}
	s.invalidate(ctx, id)

	s.events.Publish(ws.Event{Type: ws.EventCharacterDeleted, CharacterID: id, Payload: map[string]string{"id": id}})
	s.log.Info("Character deleted", "characterId", id)
	return nil
}

// AttributeOptions returns the suggested attribute values for the form.
func (s *CharacterService) AttributeOptions() models.AttributeOptions {
	return models.DefaultAttributeOptions()
}

func (s *CharacterService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, characterCachePrefix+id); err != nil {
		s.log.Warn("Character cache invalidation failed", "characterId", id, "error", err.Error())
	}
}

func validateAttributes(attrs models.Attributes) error {
	if attrs.Age != nil && (*attrs.Age < models.MinCharacterAge || *attrs.Age > models.MaxCharacterAge) {
		return errors.NewValidationError("attributes.age",
			fmt.Sprintf("Age must be between %d and %d", models.MinCharacterAge, models.MaxCharacterAge))
	}
	return nil
}

func characterLookupError(id string, err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NewNotFoundError(errors.CodeCharacterNotFound, "Character not found").
			WithDetails(map[string]string{"id": id})
	}
	return fmt.Errorf("character %s: %w", id, err)
}
