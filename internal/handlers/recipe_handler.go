package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RecipeHandler handles HTTP requests for recipes and the requester's relations to them.
type RecipeHandler struct {
	recipeService       *services.RecipeService
	relationService     *services.RelationService
	shoppingListService *services.ShoppingListService
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(recipeService *services.RecipeService, relationService *services.RelationService, shoppingListService *services.ShoppingListService) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		relationService:     relationService,
		shoppingListService: shoppingListService,
	}
}

// HandleListRecipes returns one page of recipes filtered by tags, author,
// is_favorited and is_in_shopping_cart.
func (h *RecipeHandler) HandleListRecipes(c *fiber.Ctx) error {
	filter := services.RecipeFilter{
		IsFavorited:      flag(c, "is_favorited"),
		IsInShoppingCart: flag(c, "is_in_shopping_cart"),
		Page:             pageRequest(c),
	}
	for _, slug := range c.Context().QueryArgs().PeekMulti("tags") {
		filter.Tags = append(filter.Tags, string(slug))
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "author", "Enter a valid user id.")
		}
		id := uint(author)
		filter.AuthorID = &id
	}

	page, err := h.recipeService.ListRecipes(c.UserContext(), middleware.CurrentUser(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return paginated(c, page)
}

// HandleCreateRecipe creates a recipe authored by the requester.
func (h *RecipeHandler) HandleCreateRecipe(c *fiber.Ctx) error {
	var req services.CreateRecipeInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	recipe, err := h.recipeService.CreateRecipe(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// HandleGetRecipe returns one recipe.
func (h *RecipeHandler) HandleGetRecipe(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	recipe, err := h.recipeService.GetRecipe(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

// HandleUpdateRecipe partially updates a recipe owned by the requester.
func (h *RecipeHandler) HandleUpdateRecipe(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	var req services.UpdateRecipeInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	recipe, err := h.recipeService.UpdateRecipe(c.UserContext(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

// HandleDeleteRecipe deletes a recipe owned by the requester.
func (h *RecipeHandler) HandleDeleteRecipe(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	if err := h.recipeService.DeleteRecipe(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleAddFavorite adds a recipe to the requester's favorites.
func (h *RecipeHandler) HandleAddFavorite(c *fiber.Ctx) error {
	return h.addRelation(c, h.relationService.AddFavorite)
}

// HandleRemoveFavorite removes a recipe from the requester's favorites.
func (h *RecipeHandler) HandleRemoveFavorite(c *fiber.Ctx) error {
	return h.removeRelation(c, h.relationService.RemoveFavorite)
}

// HandleAddToShoppingCart adds a recipe to the requester's shopping cart.
func (h *RecipeHandler) HandleAddToShoppingCart(c *fiber.Ctx) error {
	return h.addRelation(c, h.relationService.AddToShoppingCart)
}

// HandleRemoveFromShoppingCart removes a recipe from the requester's shopping cart.
func (h *RecipeHandler) HandleRemoveFromShoppingCart(c *fiber.Ctx) error {
	return h.removeRelation(c, h.relationService.RemoveFromShoppingCart)
}

type addRelationFunc func(ctx context.Context, requester *models.User, recipeID uint) (services.RecipeShortView, error)

type removeRelationFunc func(ctx context.Context, requester *models.User, recipeID uint) error

func (h *RecipeHandler) addRelation(c *fiber.Ctx, add addRelationFunc) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	view, err := add(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *RecipeHandler) removeRelation(c *fiber.Ctx, remove removeRelationFunc) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	if err := remove(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDownloadShoppingCart sends the aggregated shopping list as an attachment.
func (h *RecipeHandler) HandleDownloadShoppingCart(c *fiber.Ctx) error {
	doc, err := h.shoppingListService.DownloadShoppingList(c.UserContext(), middleware.CurrentUser(c))
	if errors.Is(err, services.ErrShoppingListEmpty) {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString("Shopping list is empty.")
	}
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
	return c.Send(doc.Body)
}
