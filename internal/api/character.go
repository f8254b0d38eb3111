package api

import (
	"net/http"

	"character-image-generator/backend/internal/models"
	"character-image-generator/backend/internal/service"
	"character-image-generator/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type CharacterHandler struct {
	service *service.CharacterService
}

func NewCharacterHandler(service *service.CharacterService) *CharacterHandler {
	return &CharacterHandler{service: service}
}

// RegisterRoutes mounts the character routes; write middleware guards mutations.
func (h *CharacterHandler) RegisterRoutes(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	characters := rg.Group("/characters")
	characters.POST("", chain(write, h.CreateCharacter)...)
	characters.GET("", h.ListCharacters)
	characters.GET("/:id", h.GetCharacter)
	characters.PUT("/:id", chain(write, h.UpdateCharacter)...)
	characters.DELETE("/:id", chain(write, h.DeleteCharacter)...)

	rg.GET("/attributes", h.GetAttributeOptions)
}

func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	var req models.CreateCharacterRequest
	if !bindJSON(c, &req, false) {
		return
	}

	ctx := c.Request.Context()
	character, err := h.service.Create(ctx, &req, middleware.GetUserID(ctx))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, character)
}

func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	characters, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, characters)
}

func (h *CharacterHandler) GetCharacter(c *gin.Context) {
	character, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (h *CharacterHandler) UpdateCharacter(c *gin.Context) {
	var req models.UpdateCharacterRequest
	if !bindJSON(c, &req, false) {
		return
	}

	character, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (h *CharacterHandler) DeleteCharacter(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Character deleted successfully"})
}

func (h *CharacterHandler) GetAttributeOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.AttributeOptions())
}
