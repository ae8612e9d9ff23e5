package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodgram/internal/database"
	"foodgram/internal/middleware"
	"foodgram/internal/repositories"
	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*fiber.App, string) {
	t.Helper()
	db := database.OpenTestDB(t)
	auth := services.NewAuthService(repositories.NewGORMUserRepository(db), repositories.NewMemoryTokenDenylist(), "secret", time.Hour)
	ctx := context.Background()
	_, err := auth.Register(ctx, services.RegisterInput{
		Email: "cook@example.com", Username: "cook", FirstName: "C", LastName: "K", Password: "password123",
	})
	require.NoError(t, err)
	token, err := auth.Login(ctx, services.LoginInput{Email: "cook@example.com", Password: "password123"})
	require.NoError(t, err)

	whoami := func(c *fiber.Ctx) error {
		if user := middleware.CurrentUser(c); user != nil {
			return c.SendString(user.Username)
		}
		return c.SendString("anonymous")
	}
	app := fiber.New()
	app.Get("/required", middleware.AuthRequired(auth), whoami)
	app.Get("/optional", middleware.OptionalAuth(auth), whoami)
	return app, token
}

func call(t *testing.T, app *fiber.App, path, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthRequired(t *testing.T) {
	app, token := setup(t)

	status, body := call(t, app, "/required", "Token "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cook", body)

	status, _ = call(t, app, "/required", "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)

	for _, header := range []string{"", token, "Token", "Basic " + token, "Token not-a-jwt"} {
		status, _ = call(t, app, "/required", header)
		assert.Equal(t, http.StatusUnauthorized, status, header)
	}
}

func TestOptionalAuth(t *testing.T) {
	app, token := setup(t)

	status, body := call(t, app, "/optional", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "anonymous", body)

	status, body = call(t, app, "/optional", "Token "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cook", body)

	status, _ = call(t, app, "/optional", "Token not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, status)
}
