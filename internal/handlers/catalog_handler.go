package handlers

import (
	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the read-only tag and ingredient catalog.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// HandleListTags returns every tag.
func (h *CatalogHandler) HandleListTags(c *fiber.Ctx) error {
	tags, err := h.service.ListTags(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tags)
}

// HandleGetTag returns one tag.
func (h *CatalogHandler) HandleGetTag(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	tag, err := h.service.GetTag(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tag)
}

// HandleListIngredients searches ingredients by the name query parameter.
func (h *CatalogHandler) HandleListIngredients(c *fiber.Ctx) error {
	ingredients, err := h.service.ListIngredients(c.UserContext(), c.Query("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ingredients)
}

// HandleGetIngredient returns one ingredient.
func (h *CatalogHandler) HandleGetIngredient(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	ingredient, err := h.service.GetIngredient(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ingredient)
}
