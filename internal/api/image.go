package api

import (
	"net/http"

	"character-image-generator/backend/internal/models"
	"character-image-generator/backend/internal/service"

	"github.com/gin-gonic/gin"
)

type ImageHandler struct {
	service *service.ImageService
}

func NewImageHandler(service *service.ImageService) *ImageHandler {
	return &ImageHandler{service: service}
}

// RegisterRoutes mounts the image routes; write middleware guards mutations.
func (h *ImageHandler) RegisterRoutes(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	images := rg.Group("/images")
	images.POST("/generate/:characterId", chain(write, h.GenerateImages)...)
	images.GET("/character/:characterId", h.ListCharacterImages)
	images.GET("", h.ListImages)
	images.GET("/:id", h.GetImage)
	images.PATCH("/:id/favorite", chain(write, h.ToggleFavorite)...)
	images.POST("/:id/refine", chain(write, h.RefineImage)...)
}

func (h *ImageHandler) GenerateImages(c *gin.Context) {
	var req models.GenerateImagesRequest
	if !bindJSON(c, &req, true) {
		return
	}

	images, err := h.service.GenerateForCharacter(c.Request.Context(), c.Param("characterId"), req.Count)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, images)
}

func (h *ImageHandler) ListCharacterImages(c *gin.Context) {
	images, err := h.service.ListByCharacter(c.Request.Context(), c.Param("characterId"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, images)
}

func (h *ImageHandler) ListImages(c *gin.Context) {
	images, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, images)
}

func (h *ImageHandler) GetImage(c *gin.Context) {
	image, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, image)
}

func (h *ImageHandler) ToggleFavorite(c *gin.Context) {
	image, err := h.service.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, image)
}

func (h *ImageHandler) RefineImage(c *gin.Context) {
	var req models.RefineImageRequest
	if !bindJSON(c, &req, false) {
		return
	}

	image, err := h.service.Refine(c.Request.Context(), c.Param("id"), req.RefinedPrompt)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, image)
}
