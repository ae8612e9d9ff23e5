package handlers

import (
	"errors"
	"net/url"
	"strconv"

	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// respondError maps service errors onto HTTP responses.
func respondError(c *fiber.Ctx, err error) error {
	var fieldErrs services.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fieldErrs.Fields())
	}
	var fieldErr *services.ValidationError
	if errors.As(err, &fieldErr) {
		return c.Status(fiber.StatusBadRequest).JSON(services.ValidationErrors{fieldErr}.Fields())
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Not found."})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": services.ErrForbidden.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token."})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"non_field_errors": []string{"Unable to log in with provided credentials."},
		})
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrRelationNotFound),
		errors.Is(err, services.ErrSelfSubscription):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": err.Error()})
	}

	log.Errorf("%s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"detail": "Internal server error.",
	})
}

// badRequest replies with a single field error.
func badRequest(c *fiber.Ctx, field, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{field: []string{message}})
}

// invalidBody replies to a request whose body could not be decoded.
func invalidBody(c *fiber.Ctx, err error) error {
	log.Debugf("Error parsing request body: %v", err)
	return badRequest(c, "non_field_errors", "Invalid request body.")
}

// paramID reads the positive integer path parameter "id".
func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Not found."})
}

// pageRequest reads the page and limit query parameters.
func pageRequest(c *fiber.Ctx) services.PageRequest {
	return services.PageRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 0),
	}
}

// paginated renders a page as {count, next, previous, results}.
func paginated[T any](c *fiber.Ctx, page services.Page[T]) error {
	var next, previous interface{}
	if page.HasNext() {
		next = pageURL(c, page.Page+1)
	}
	if page.HasPrevious() {
		previous = pageURL(c, page.Page-1)
	}
	results := page.Results
	if results == nil {
		results = []T{}
	}
	return c.JSON(fiber.Map{
		"count":    page.Count,
		"next":     next,
		"previous": previous,
		"results":  results,
	})
}

func pageURL(c *fiber.Ctx, page int) string {
	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		query = url.Values{}
	}
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	u := c.BaseURL() + c.Path()
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// flag reports whether a boolean query parameter is set to 1 or true.
func flag(c *fiber.Ctx, key string) bool {
	v := c.Query(key)
	return v == "1" || v == "true" || v == "True"
}
