package services

import (
	"context"
	"fmt"

	"foodgram/internal/models"
	"foodgram/internal/repositories"
	"foodgram/internal/shoppinglist"
)

// ShoppingListRenderer turns aggregated lines into a downloadable document.
type ShoppingListRenderer interface {
	Render(lines []shoppinglist.Line) (*shoppinglist.Document, error)
}

// ShoppingListService builds the requester's shopping list.
type ShoppingListService struct {
	repo     repositories.ShoppingListRepository
	renderer ShoppingListRenderer
}

// NewShoppingListService creates a new ShoppingListService.
func NewShoppingListService(repo repositories.ShoppingListRepository, renderer ShoppingListRenderer) *ShoppingListService {
	return &ShoppingListService{repo: repo, renderer: renderer}
}

// DownloadShoppingList sums the ingredients of every recipe in the requester's cart.
// An empty cart yields ErrShoppingListEmpty.
func (s *ShoppingListService) DownloadShoppingList(ctx context.Context, requester *models.User) (*shoppinglist.Document, error) {
	entries, err := s.repo.CountEntries(ctx, requester.ID)
	if err != nil {
		return nil, err
	}
	if entries == 0 {
		return nil, ErrShoppingListEmpty
	}
	totals, err := s.repo.Totals(ctx, requester.ID)
	if err != nil {
		return nil, err
	}
	lines := make([]shoppinglist.Line, 0, len(totals))
	for _, t := range totals {
		lines = append(lines, shoppinglist.Line{Name: t.Name, Unit: t.MeasurementUnit, Amount: t.Amount})
	}
	doc, err := s.renderer.Render(lines)
	if err != nil {
		return nil, fmt.Errorf("failed to render shopping list: %w", err)
	}
	return doc, nil
}
