package services

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/models"
	"foodgram/internal/repositories"
)

// RelationService toggles the requester's favorites, shopping cart and subscriptions.
// Every pair moves between absent and present; repeating a transition is an error.
type RelationService struct {
	relations     repositories.RelationRepository
	recipes       repositories.RecipeRepository
	users         repositories.UserRepository
	subscriptions subscriptionViewer
	events        EventPublisher
}

// NewRelationService creates a new RelationService.
func NewRelationService(
	relations repositories.RelationRepository,
	recipes repositories.RecipeRepository,
	users repositories.UserRepository,
	events EventPublisher,
) *RelationService {
	return &RelationService{
		relations:     relations,
		recipes:       recipes,
		users:         users,
		subscriptions: subscriptionViewer{recipes: recipes, relations: relations},
		events:        events,
	}
}

// AddFavorite marks a recipe as favorite.
func (s *RelationService) AddFavorite(ctx context.Context, requester *models.User, recipeID uint) (RecipeShortView, error) {
	return s.addRecipe(ctx, repositories.RelationFavorite, requester, recipeID, "Recipe is already in favorites.")
}

// RemoveFavorite unmarks a favorite recipe.
func (s *RelationService) RemoveFavorite(ctx context.Context, requester *models.User, recipeID uint) error {
	return s.removeRecipe(ctx, repositories.RelationFavorite, requester, recipeID, "Recipe is not in favorites.")
}

// AddToShoppingCart puts a recipe into the shopping cart.
func (s *RelationService) AddToShoppingCart(ctx context.Context, requester *models.User, recipeID uint) (RecipeShortView, error) {
	return s.addRecipe(ctx, repositories.RelationShoppingCart, requester, recipeID, "Recipe is already in the shopping cart.")
}

// RemoveFromShoppingCart takes a recipe out of the shopping cart.
func (s *RelationService) RemoveFromShoppingCart(ctx context.Context, requester *models.User, recipeID uint) error {
	return s.removeRecipe(ctx, repositories.RelationShoppingCart, requester, recipeID, "Recipe is not in the shopping cart.")
}

func (s *RelationService) addRecipe(ctx context.Context, kind repositories.RelationKind, requester *models.User, recipeID uint, duplicate string) (RecipeShortView, error) {
	recipe, err := s.recipe(ctx, recipeID)
	if err != nil {
		return RecipeShortView{}, err
	}
	if err := s.relations.Add(ctx, kind, requester.ID, recipeID); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return RecipeShortView{}, detail(ErrConflict, duplicate)
		}
		return RecipeShortView{}, err
	}
	return newRecipeShortView(recipe), nil
}

func (s *RelationService) removeRecipe(ctx context.Context, kind repositories.RelationKind, requester *models.User, recipeID uint, missing string) error {
	if _, err := s.recipe(ctx, recipeID); err != nil {
		return err
	}
	removed, err := s.relations.Remove(ctx, kind, requester.ID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return detail(ErrRelationNotFound, missing)
	}
	return nil
}

func (s *RelationService) recipe(ctx context.Context, id uint) (*models.Recipe, error) {
	recipe, err := s.recipes.LoadAggregate(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("recipe %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return recipe, nil
}

// Subscribe makes the requester follow an author and returns the author card.
func (s *RelationService) Subscribe(ctx context.Context, requester *models.User, authorID uint, recipesLimit *int) (SubscriptionView, error) {
	if requester.ID == authorID {
		return SubscriptionView{}, detail(ErrSelfSubscription, "You cannot subscribe to yourself.")
	}
	author, err := s.author(ctx, authorID)
	if err != nil {
		return SubscriptionView{}, err
	}
	if err := s.relations.Add(ctx, repositories.RelationSubscription, requester.ID, authorID); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return SubscriptionView{}, detail(ErrConflict, "You are already subscribed to this author.")
		}
		return SubscriptionView{}, err
	}
	publish(ctx, s.events, EventSubscriptionCreated, SubscriptionEvent{
		SubscriberID:       requester.ID,
		SubscriberUsername: requester.Username,
		AuthorID:           author.ID,
		AuthorEmail:        author.Email,
		AuthorUsername:     author.Username,
	})

	views, err := s.subscriptions.build(ctx, requester, []models.User{*author}, recipesLimit)
	if err != nil {
		return SubscriptionView{}, err
	}
	return views[0], nil
}

// Unsubscribe stops the requester following an author.
func (s *RelationService) Unsubscribe(ctx context.Context, requester *models.User, authorID uint) error {
	if requester.ID == authorID {
		return detail(ErrSelfSubscription, "You cannot unsubscribe from yourself.")
	}
	if _, err := s.author(ctx, authorID); err != nil {
		return err
	}
	removed, err := s.relations.Remove(ctx, repositories.RelationSubscription, requester.ID, authorID)
	if err != nil {
		return err
	}
	if !removed {
		return detail(ErrRelationNotFound, "You are not subscribed to this author.")
	}
	return nil
}

func (s *RelationService) author(ctx context.Context, id uint) (*models.User, error) {
	author, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return author, nil
}
