// Package prompt turns a character description and its attributes into the
// text sent to the image model.
package prompt

import (
	"strconv"
	"strings"

	"character-image-generator/backend/internal/models"
)

const (
	portraitFraming = "detailed portrait of"
	qualityClause   = "high quality, highly detailed, professional digital art"
)

var enhancements = []string{
	"high resolution",
	"intricate details",
	"professional lighting",
	"vivid colors",
}

// BuildPrompt assembles a single descriptive sentence. The clause order is
// fixed: style, framing, age, gender, description, genre, emotion, quality.
// Missing attributes drop their clause.
func BuildPrompt(description string, attrs models.Attributes) string {
	parts := make([]string, 0, 8)

	if attrs.Style != "" {
		parts = append(parts, attrs.Style+"-style")
	}

	parts = append(parts, portraitFraming)

	if attrs.Age != nil && *attrs.Age != 0 {
		parts = append(parts, "a "+strconv.Itoa(*attrs.Age)+"-year-old")
	}

	if attrs.Gender != "" {
		parts = append(parts, attrs.Gender)
	}

	parts = append(parts, description)

	if attrs.Genre != "" {
		parts = append(parts, "in a "+attrs.Genre+" setting")
	}

	if attrs.Emotion != "" {
		parts = append(parts, "with a "+attrs.Emotion+" expression")
	}

	parts = append(parts, qualityClause)

	return strings.Join(parts, " ")
}

// EnhancePrompt appends the fixed rendering enhancements.
func EnhancePrompt(prompt string) string {
	return prompt + ", " + strings.Join(enhancements, ", ")
}

// ForCharacter is the prompt stored on a character.
func ForCharacter(description string, attrs models.Attributes) string {
	return EnhancePrompt(BuildPrompt(description, attrs))
}
