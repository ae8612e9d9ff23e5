package handlers

import (
	"foodgram/internal/middleware"
	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Access says which requesters a route admits.
type Access int

const (
	Public Access = iota
	Optional
	Required
)

// Route is one row of the API route table.
type Route struct {
	Method  string
	Path    string
	Access  Access
	Handler fiber.Handler
}

// Handlers bundles every resource handler of the API.
type Handlers struct {
	Auth    *AuthHandler
	Users   *UserHandler
	Catalog *CatalogHandler
	Recipes *RecipeHandler
}

// Routes returns the API route table. Fixed path segments are listed before the :id
// routes they would otherwise collide with.
func (h Handlers) Routes() []Route {
	return []Route{
		{fiber.MethodPost, "/auth/token/login/", Public, h.Auth.HandleLogin},
		{fiber.MethodPost, "/auth/token/logout/", Required, h.Auth.HandleLogout},

		{fiber.MethodGet, "/users/", Optional, h.Users.HandleListUsers},
		{fiber.MethodPost, "/users/", Public, h.Users.HandleRegister},
		{fiber.MethodGet, "/users/me/", Required, h.Users.HandleMe},
		{fiber.MethodPost, "/users/set_password/", Required, h.Users.HandleSetPassword},
		{fiber.MethodGet, "/users/subscriptions/", Required, h.Users.HandleSubscriptions},
		{fiber.MethodGet, "/users/:id/", Optional, h.Users.HandleGetUser},
		{fiber.MethodPost, "/users/:id/subscribe/", Required, h.Users.HandleSubscribe},
		{fiber.MethodDelete, "/users/:id/subscribe/", Required, h.Users.HandleUnsubscribe},

		{fiber.MethodGet, "/tags/", Public, h.Catalog.HandleListTags},
		{fiber.MethodGet, "/tags/:id/", Public, h.Catalog.HandleGetTag},
		{fiber.MethodGet, "/ingredients/", Public, h.Catalog.HandleListIngredients},
		{fiber.MethodGet, "/ingredients/:id/", Public, h.Catalog.HandleGetIngredient},

		{fiber.MethodGet, "/recipes/", Optional, h.Recipes.HandleListRecipes},
		{fiber.MethodPost, "/recipes/", Required, h.Recipes.HandleCreateRecipe},
		{fiber.MethodGet, "/recipes/download_shopping_cart/", Required, h.Recipes.HandleDownloadShoppingCart},
		{fiber.MethodGet, "/recipes/:id/", Optional, h.Recipes.HandleGetRecipe},
		{fiber.MethodPatch, "/recipes/:id/", Required, h.Recipes.HandleUpdateRecipe},
		{fiber.MethodDelete, "/recipes/:id/", Required, h.Recipes.HandleDeleteRecipe},
		{fiber.MethodPost, "/recipes/:id/favorite/", Required, h.Recipes.HandleAddFavorite},
		{fiber.MethodDelete, "/recipes/:id/favorite/", Required, h.Recipes.HandleRemoveFavorite},
		{fiber.MethodPost, "/recipes/:id/shopping_cart/", Required, h.Recipes.HandleAddToShoppingCart},
		{fiber.MethodDelete, "/recipes/:id/shopping_cart/", Required, h.Recipes.HandleRemoveFromShoppingCart},
	}
}

// RegisterRoutes registers routes on router in table order, wrapping each handler with
// the authentication its Access level requires.
func RegisterRoutes(router fiber.Router, routes []Route, authService *services.AuthService) {
	required := middleware.AuthRequired(authService)
	optional := middleware.OptionalAuth(authService)
	for _, r := range routes {
		handlers := []fiber.Handler{r.Handler}
		switch r.Access {
		case Required:
			handlers = append([]fiber.Handler{required}, handlers...)
		case Optional:
			handlers = append([]fiber.Handler{optional}, handlers...)
		}
		router.Add(r.Method, r.Path, handlers...)
	}
}
