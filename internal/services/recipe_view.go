package services

import (
	"context"
	"fmt"

	"foodgram/internal/models"
	"foodgram/internal/repositories"
)

// RecipeViewer projects recipe aggregates into requester-relative views. Flags for a
// whole batch are resolved with one query per relation kind.
type RecipeViewer struct {
	relations repositories.RelationRepository
}

// NewRecipeViewer creates a new RecipeViewer.
func NewRecipeViewer(relations repositories.RelationRepository) *RecipeViewer {
	return &RecipeViewer{relations: relations}
}

type recipeFlags struct {
	favorited  map[uint]bool
	inCart     map[uint]bool
	subscribed map[uint]bool
}

func (v *RecipeViewer) flags(ctx context.Context, requester *models.User, recipes []models.Recipe) (recipeFlags, error) {
	f := recipeFlags{}
	if requester == nil || len(recipes) == 0 {
		return f, nil
	}
	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}
	var err error
	if f.favorited, err = v.relations.Targets(ctx, repositories.RelationFavorite, requester.ID, recipeIDs); err != nil {
		return f, fmt.Errorf("failed to resolve favorites: %w", err)
	}
	if f.inCart, err = v.relations.Targets(ctx, repositories.RelationShoppingCart, requester.ID, recipeIDs); err != nil {
		return f, fmt.Errorf("failed to resolve shopping cart: %w", err)
	}
	if f.subscribed, err = v.relations.Targets(ctx, repositories.RelationSubscription, requester.ID, authorIDs); err != nil {
		return f, fmt.Errorf("failed to resolve subscriptions: %w", err)
	}
	return f, nil
}

// Build returns the views of recipes in input order. A nil requester sees every flag false.
func (v *RecipeViewer) Build(ctx context.Context, requester *models.User, recipes []models.Recipe) ([]RecipeView, error) {
	f, err := v.flags(ctx, requester, recipes)
	if err != nil {
		return nil, err
	}
	views := make([]RecipeView, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		view := RecipeView{
			ID:               r.ID,
			Tags:             make([]TagView, 0, len(r.Tags)),
			Author:           newUserView(&r.Author, f.subscribed[r.AuthorID]),
			Ingredients:      make([]IngredientAmountView, 0, len(r.Ingredients)),
			IsFavorited:      f.favorited[r.ID],
			IsInShoppingCart: f.inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
		for _, t := range r.Tags {
			view.Tags = append(view.Tags, TagView{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug})
		}
		for _, line := range r.Ingredients {
			view.Ingredients = append(view.Ingredients, IngredientAmountView{
				ID:              line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}
		views = append(views, view)
	}
	return views, nil
}

// BuildOne returns the view of a single recipe.
func (v *RecipeViewer) BuildOne(ctx context.Context, requester *models.User, recipe *models.Recipe) (RecipeView, error) {
	views, err := v.Build(ctx, requester, []models.Recipe{*recipe})
	if err != nil {
		return RecipeView{}, err
	}
	return views[0], nil
}

// subscriptionViewer builds author cards with recipe previews.
type subscriptionViewer struct {
	recipes   repositories.RecipeRepository
	relations repositories.RelationRepository
}

func (v subscriptionViewer) build(ctx context.Context, requester *models.User, authors []models.User, recipesLimit *int) ([]SubscriptionView, error) {
	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	counts, err := v.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}
	subscribed := map[uint]bool{}
	if requester != nil {
		if subscribed, err = v.relations.Targets(ctx, repositories.RelationSubscription, requester.ID, ids); err != nil {
			return nil, fmt.Errorf("failed to resolve subscriptions: %w", err)
		}
	}
	limit := 0
	if recipesLimit != nil {
		limit = *recipesLimit
	}

	views := make([]SubscriptionView, 0, len(authors))
	for i := range authors {
		view := SubscriptionView{
			UserView:     newUserView(&authors[i], subscribed[authors[i].ID]),
			Recipes:      []RecipeShortView{},
			RecipesCount: counts[authors[i].ID],
		}
		if recipesLimit == nil || limit > 0 {
			recipes, err := v.recipes.ListByAuthor(ctx, authors[i].ID, limit)
			if err != nil {
				return nil, err
			}
			for j := range recipes {
				view.Recipes = append(view.Recipes, newRecipeShortView(&recipes[j]))
			}
		}
		views = append(views, view)
	}
	return views, nil
}
