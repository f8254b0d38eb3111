// Package ai turns a prompt into image URLs, falling back to placeholders
// whenever the text-to-image provider is unavailable.
package ai

import (
	"context"
	"fmt"

	"character-image-generator/backend/internal/models"
)

// ImageGenerator renders one image for a prompt and returns its URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ImageMirror copies a provider URL to storage the service controls and
// returns the new public URL.
type ImageMirror interface {
	Mirror(ctx context.Context, sourceURL string) (string, error)
}

// Placeholders are returned in this order when generation is not possible.
var Placeholders = [...]string{
	"https://placehold.co/512x512?text=Character+1",
	"https://placehold.co/512x512?text=Character+2",
	"https://placehold.co/512x512?text=Character+3",
}

// PlaceholderAt returns the placeholder for result slot i.
func PlaceholderAt(i int) string {
	return Placeholders[i%len(Placeholders)]
}

// GeneratedURL is one orchestrator result.
type GeneratedURL struct {
	URL    string
	Source models.ImageSource
}

// ExternalError describes a failed call to the image provider. It never
// reaches API clients; the orchestrator substitutes a placeholder.
type ExternalError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ExternalError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("image provider returned %d: %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("image provider: %s: %v", e.Message, e.Err)
	default:
		return "image provider: " + e.Message
	}
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}
