package prompt

import (
	"strings"
	"testing"

	"character-image-generator/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestForCharacter_FullAttributes(t *testing.T) {
	attrs := models.Attributes{
		Style:   "anime",
		Age:     intPtr(30),
		Gender:  "male",
		Genre:   "Fantasy",
		Emotion: "Confident",
	}

	got := ForCharacter("a knight with blue eyes", attrs)

	want := "anime-style detailed portrait of a 30-year-old male a knight with blue eyes in a Fantasy setting " +
		"with a Confident expression, high quality, highly detailed, professional digital art, " +
		"high resolution, intricate details, professional lighting, vivid colors"
	assert.Equal(t, want, got)
}

func TestBuildPrompt_NoAttributes(t *testing.T) {
	got := BuildPrompt("a tired wizard", models.Attributes{})
	assert.Equal(t, "detailed portrait of a tired wizard high quality, highly detailed, professional digital art", got)
}

func TestBuildPrompt_OmitsOnlyMissingClauses(t *testing.T) {
	tests := []struct {
		name    string
		attrs   models.Attributes
		present []string
		absent  []string
	}{
		{
			name:    "style only",
			attrs:   models.Attributes{Style: "Watercolor"},
			present: []string{"Watercolor-style"},
			absent:  []string{"-year-old", " setting", " expression"},
		},
		{
			name:    "age and emotion",
			attrs:   models.Attributes{Age: intPtr(17), Emotion: "angry"},
			present: []string{"a 17-year-old", "with a angry expression"},
			absent:  []string{"-style", " setting"},
		},
		{
			name:    "zero age counts as absent",
			attrs:   models.Attributes{Age: intPtr(0), Genre: "sci-fi"},
			present: []string{"in a sci-fi setting"},
			absent:  []string{"-year-old"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPrompt("someone", tt.attrs)
			assert.Contains(t, got, "someone")
			for _, p := range tt.present {
				assert.Contains(t, got, p)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, got, a)
			}
		})
	}
}

func TestBuildPrompt_ClauseOrder(t *testing.T) {
	description := "DESC"
	got := BuildPrompt(description, models.Attributes{
		Style:   "STYLE",
		Age:     intPtr(42),
		Gender:  "GENDER",
		Genre:   "GENRE",
		Emotion: "EMOTION",
	})

	markers := []string{
		"STYLE-style",
		portraitFraming,
		"a 42-year-old",
		"GENDER",
		description,
		"in a GENRE setting",
		"with a EMOTION expression",
		qualityClause,
	}

	last := -1
	for _, m := range markers {
		idx := strings.Index(got, m)
		assert.Greater(t, idx, last, "clause %q out of order in %q", m, got)
		last = idx
	}
}

func TestBuildPrompt_DescriptionVerbatim(t *testing.T) {
	description := "  warrior, with  odd spacing & symbols: <>  "
	got := BuildPrompt(description, models.Attributes{Gender: "female"})
	assert.Contains(t, got, description)
}

func TestEnhancePrompt(t *testing.T) {
	assert.Equal(t, "x, high resolution, intricate details, professional lighting, vivid colors", EnhancePrompt("x"))
	assert.Equal(t, ", high resolution, intricate details, professional lighting, vivid colors", EnhancePrompt(""))
}
