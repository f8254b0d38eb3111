package repository

import (
	"context"
	"sort"
	"sync"

	"character-image-generator/backend/internal/models"
)

// MemoryCharacterRepository keeps characters in process memory. It backs
// DB_DRIVER=memory for running without PostgreSQL.
type MemoryCharacterRepository struct {
	mu    sync.RWMutex
	items map[string]memoryEntry[models.Character]
	seq   uint64
}

type memoryEntry[T any] struct {
	value T
	seq   uint64
}

func NewMemoryCharacterRepository() *MemoryCharacterRepository {
	return &MemoryCharacterRepository{items: make(map[string]memoryEntry[models.Character])}
}

func (r *MemoryCharacterRepository) Create(_ context.Context, character *models.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.items[character.ID] = memoryEntry[models.Character]{value: cloneCharacter(*character), seq: r.seq}
	return nil
}

func (r *MemoryCharacterRepository) GetByID(_ context.Context, id string) (*models.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneCharacter(entry.value)
	return &c, nil
}

func (r *MemoryCharacterRepository) List(_ context.Context) ([]models.Character, error) {
	r.mu.RLock()
	entries := make([]memoryEntry[models.Character], 0, len(r.items))
	for _, e := range r.items {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sortNewestFirst(entries, func(c models.Character) int64 { return c.CreatedAt.UnixNano() })

	characters := make([]models.Character, 0, len(entries))
	for _, e := range entries {
		characters = append(characters, cloneCharacter(e.value))
	}
	return characters, nil
}

func (r *MemoryCharacterRepository) Update(_ context.Context, character *models.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.items[character.ID]
	if !ok {
		return ErrNotFound
	}
	updated := cloneCharacter(*character)
	updated.CreatedAt = entry.value.CreatedAt
	entry.value = updated
	r.items[character.ID] = entry
	return nil
}

func (r *MemoryCharacterRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// MemoryImageRepository keeps generated images in process memory.
type MemoryImageRepository struct {
	mu    sync.RWMutex
	items map[string]memoryEntry[models.GeneratedImage]
	seq   uint64
}

func NewMemoryImageRepository() *MemoryImageRepository {
	return &MemoryImageRepository{items: make(map[string]memoryEntry[models.GeneratedImage])}
}

func (r *MemoryImageRepository) Create(_ context.Context, image *models.GeneratedImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.insert(image)
	return nil
}

func (r *MemoryImageRepository) CreateBatch(_ context.Context, images []*models.GeneratedImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, image := range images {
		r.insert(image)
	}
	return nil
}

func (r *MemoryImageRepository) insert(image *models.GeneratedImage) {
	r.seq++
	r.items[image.ID] = memoryEntry[models.GeneratedImage]{value: cloneImage(*image), seq: r.seq}
}

func (r *MemoryImageRepository) GetByID(_ context.Context, id string) (*models.GeneratedImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	img := cloneImage(entry.value)
	return &img, nil
}

func (r *MemoryImageRepository) ListByCharacter(_ context.Context, characterID string) ([]models.GeneratedImage, error) {
	return r.filter(func(img models.GeneratedImage) bool { return img.CharacterID == characterID }), nil
}

func (r *MemoryImageRepository) List(_ context.Context) ([]models.GeneratedImage, error) {
	return r.filter(func(models.GeneratedImage) bool { return true }), nil
}

func (r *MemoryImageRepository) filter(keep func(models.GeneratedImage) bool) []models.GeneratedImage {
	r.mu.RLock()
	entries := make([]memoryEntry[models.GeneratedImage], 0, len(r.items))
	for _, e := range r.items {
		if keep(e.value) {
			entries = append(entries, e)
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(entries, func(img models.GeneratedImage) int64 { return img.CreatedAt.UnixNano() })

	images := make([]models.GeneratedImage, 0, len(entries))
	for _, e := range entries {
		images = append(images, cloneImage(e.value))
	}
	return images
}

func (r *MemoryImageRepository) SetFavorite(_ context.Context, id string, favorite bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	entry.value.IsFavorite = favorite
	r.items[id] = entry
	return nil
}

// sortNewestFirst orders by timestamp descending, breaking ties by insertion order.
func sortNewestFirst[T any](entries []memoryEntry[T], ts func(T) int64) {
	sort.Slice(entries, func(i, j int) bool {
		ti, tj := ts(entries[i].value), ts(entries[j].value)
		if ti != tj {
			return ti > tj
		}
		return entries[i].seq > entries[j].seq
	})
}

func cloneCharacter(c models.Character) models.Character {
	if c.Attributes.Age != nil {
		age := *c.Attributes.Age
		c.Attributes.Age = &age
	}
	return c
}

func cloneImage(img models.GeneratedImage) models.GeneratedImage {
	if img.ParentID != nil {
		parent := *img.ParentID
		img.ParentID = &parent
	}
	return img
}
