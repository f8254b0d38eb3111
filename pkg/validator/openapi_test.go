package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"character-image-generator/backend/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v, err := NewOpenAPIValidator("/api")
	require.NoError(t, err)

	r := gin.New()
	r.Use(errors.ErrorHandler(), v.Middleware())
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	for _, prefix := range []string{"", "/api"} {
		r.POST(prefix+"/characters", ok)
		r.POST(prefix+"/images/generate/:characterId", ok)
		r.POST(prefix+"/images/:id/refine", ok)
	}
	r.GET("/undocumented", ok)
	return r
}

func TestEmbeddedSchemaIsValid(t *testing.T) {
	assert.NotEmpty(t, Schema())
	_, err := NewOpenAPIValidator("")
	require.NoError(t, err)
}

func TestMiddleware(t *testing.T) {
	r := newTestEngine(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"valid create", http.MethodPost, "/characters", `{"name":"a","description":"b","attributes":{"age":3}}`, 204},
		{"valid create under prefix", http.MethodPost, "/api/characters", `{"name":"a","description":"b"}`, 204},
		{"wrong attribute type", http.MethodPost, "/characters", `{"name":"a","attributes":{"age":"old"}}`, 400},
		{"wrong type under prefix", http.MethodPost, "/api/characters", `{"name":7}`, 400},
		{"generate without body", http.MethodPost, "/images/generate/abc", ``, 204},
		{"generate with string count", http.MethodPost, "/images/generate/abc", `{"count":"three"}`, 400},
		{"refine requires body", http.MethodPost, "/images/abc/refine", ``, 400},
		{"undocumented route", http.MethodGet, "/undocumented", ``, 204},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusBadRequest {
				assert.Contains(t, w.Body.String(), errors.CodeValidation)
			}
		})
	}
}

func TestLoadRejectsInvalidDocument(t *testing.T) {
	_, err := NewOpenAPIValidatorFromData([]byte("openapi: 3.0.3\npaths: {}\n"), "")
	assert.Error(t, err)
}
