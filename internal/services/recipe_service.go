package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
)

// IngredientAmountInput references a catalog ingredient with a quantity.
type IngredientAmountInput struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"gte=1,lte=32000"`
}

// CreateRecipeInput is the payload for creating a recipe.
type CreateRecipeInput struct {
	Name        string                  `json:"name" validate:"required,max=200"`
	Text        string                  `json:"text" validate:"required"`
	Image       string                  `json:"image"`
	CookingTime int                     `json:"cooking_time" validate:"gte=1,lte=32000"`
	Tags        []uint                  `json:"tags" validate:"required,min=1,unique,dive,required"`
	Ingredients []IngredientAmountInput `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
}

// UpdateRecipeInput is a partial update. Nil fields are left unchanged; present
// collections replace the stored ones entirely.
type UpdateRecipeInput struct {
	Name        *string                 `json:"name" validate:"omitnil,min=1,max=200"`
	Text        *string                 `json:"text" validate:"omitnil,min=1"`
	Image       *string                 `json:"image"`
	CookingTime *int                    `json:"cooking_time" validate:"omitnil,gte=1,lte=32000"`
	Tags        []uint                  `json:"tags" validate:"omitnil,min=1,unique,dive,required"`
	Ingredients []IngredientAmountInput `json:"ingredients" validate:"omitnil,min=1,unique=ID,dive"`
}

// RecipeFilter narrows ListRecipes. Boolean filters only apply to authenticated requesters.
type RecipeFilter struct {
	Tags             []string
	AuthorID         *uint
	IsFavorited      bool
	IsInShoppingCart bool
	Page             PageRequest
}

// RecipeService handles recipe commands and queries.
type RecipeService struct {
	recipes  repositories.RecipeRepository
	catalog  repositories.CatalogRepository
	viewer   *RecipeViewer
	images   ImageStore
	events   EventPublisher
	validate *validator.Validate
	pageSize int
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(
	recipes repositories.RecipeRepository,
	catalog repositories.CatalogRepository,
	relations repositories.RelationRepository,
	images ImageStore,
	events EventPublisher,
	pageSize int,
) *RecipeService {
	return &RecipeService{
		recipes:  recipes,
		catalog:  catalog,
		viewer:   NewRecipeViewer(relations),
		images:   images,
		events:   events,
		validate: NewValidator(),
		pageSize: pageSize,
	}
}

// CreateRecipe stores a new recipe authored by the requester and returns its view.
func (s *RecipeService) CreateRecipe(ctx context.Context, requester *models.User, in CreateRecipeInput) (RecipeView, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return RecipeView{}, err
	}
	lines, err := s.resolveIngredients(ctx, in.Ingredients)
	if err != nil {
		return RecipeView{}, err
	}
	tags, err := s.resolveTags(ctx, in.Tags)
	if err != nil {
		return RecipeView{}, err
	}

	recipe := &models.Recipe{
		AuthorID:    requester.ID,
		Name:        strings.TrimSpace(in.Name),
		Text:        in.Text,
		CookingTime: in.CookingTime,
		Tags:        tags,
		Ingredients: lines,
	}
	if in.Image != "" {
		if recipe.Image, err = storeImage(ctx, s.images, in.Image); err != nil {
			return RecipeView{}, err
		}
	}
	if err := s.recipes.SaveAggregate(ctx, recipe, repositories.SaveOptions{}); err != nil {
		discardImage(ctx, s.images, recipe.Image)
		return RecipeView{}, fmt.Errorf("failed to create recipe: %w", err)
	}
	log.Infof("recipe id=%d created by user id=%d", recipe.ID, requester.ID)
	publish(ctx, s.events, EventRecipeCreated, RecipeEvent{RecipeID: recipe.ID, AuthorID: requester.ID, Name: recipe.Name})

	return s.GetRecipe(ctx, requester, recipe.ID)
}

// UpdateRecipe applies a partial update to a recipe owned by the requester.
func (s *RecipeService) UpdateRecipe(ctx context.Context, requester *models.User, id uint, in UpdateRecipeInput) (RecipeView, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return RecipeView{}, err
	}
	if recipe.AuthorID != requester.ID {
		return RecipeView{}, ErrForbidden
	}
	if err := validateStruct(s.validate, in); err != nil {
		return RecipeView{}, err
	}

	opts := repositories.SaveOptions{}
	if in.Ingredients != nil {
		if recipe.Ingredients, err = s.resolveIngredients(ctx, in.Ingredients); err != nil {
			return RecipeView{}, err
		}
		opts.ReplaceIngredients = true
	}
	if in.Tags != nil {
		if recipe.Tags, err = s.resolveTags(ctx, in.Tags); err != nil {
			return RecipeView{}, err
		}
		opts.ReplaceTags = true
	}
	if in.Name != nil {
		recipe.Name = strings.TrimSpace(*in.Name)
	}
	if in.Text != nil {
		recipe.Text = *in.Text
	}
	if in.CookingTime != nil {
		recipe.CookingTime = *in.CookingTime
	}

	oldImage := recipe.Image
	if in.Image != nil && *in.Image != "" {
		if recipe.Image, err = storeImage(ctx, s.images, *in.Image); err != nil {
			return RecipeView{}, err
		}
	}
	if err := s.recipes.SaveAggregate(ctx, recipe, opts); err != nil {
		if recipe.Image != oldImage {
			discardImage(ctx, s.images, recipe.Image)
		}
		return RecipeView{}, fmt.Errorf("failed to update recipe %d: %w", id, err)
	}
	if recipe.Image != oldImage {
		discardImage(ctx, s.images, oldImage)
	}
	return s.GetRecipe(ctx, requester, id)
}

// DeleteRecipe removes a recipe owned by the requester.
func (s *RecipeService) DeleteRecipe(ctx context.Context, requester *models.User, id uint) error {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != requester.ID {
		return ErrForbidden
	}
	if err := s.recipes.DeleteAggregate(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("recipe %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	discardImage(ctx, s.images, recipe.Image)
	log.Infof("recipe id=%d deleted by user id=%d", id, requester.ID)
	publish(ctx, s.events, EventRecipeDeleted, RecipeEvent{RecipeID: id, AuthorID: recipe.AuthorID, Name: recipe.Name})
	return nil
}

// GetRecipe returns the view of one recipe. requester may be nil.
func (s *RecipeService) GetRecipe(ctx context.Context, requester *models.User, id uint) (RecipeView, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return RecipeView{}, err
	}
	return s.viewer.BuildOne(ctx, requester, recipe)
}

// ListRecipes returns one page of recipes, newest first. requester may be nil.
func (s *RecipeService) ListRecipes(ctx context.Context, requester *models.User, filter RecipeFilter) (Page[RecipeView], error) {
	page, size := filter.Page.normalize(s.pageSize)
	query := repositories.RecipeQuery{
		TagSlugs: filter.Tags,
		AuthorID: filter.AuthorID,
		Offset:   (page - 1) * size,
		Limit:    size,
	}
	if requester != nil {
		if filter.IsFavorited {
			query.FavoritedBy = &requester.ID
		}
		if filter.IsInShoppingCart {
			query.InShoppingCartOf = &requester.ID
		}
	}

	recipes, total, err := s.recipes.List(ctx, query)
	if err != nil {
		return Page[RecipeView]{}, fmt.Errorf("failed to list recipes: %w", err)
	}
	views, err := s.viewer.Build(ctx, requester, recipes)
	if err != nil {
		return Page[RecipeView]{}, err
	}
	return Page[RecipeView]{Count: total, Page: page, PageSize: size, Results: views}, nil
}

func (s *RecipeService) load(ctx context.Context, id uint) (*models.Recipe, error) {
	recipe, err := s.recipes.LoadAggregate(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("recipe %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return recipe, nil
}

func (s *RecipeService) resolveIngredients(ctx context.Context, in []IngredientAmountInput) ([]models.RecipeIngredient, error) {
	ids := make([]uint, 0, len(in))
	for _, line := range in {
		ids = append(ids, line.ID)
	}
	found, err := s.catalog.IngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Ingredient, len(found))
	for _, ing := range found {
		byID[ing.ID] = ing
	}
	if missing := missingIDs(ids, func(id uint) bool { _, ok := byID[id]; return ok }); len(missing) > 0 {
		return nil, invalid("ingredients", fmt.Sprintf("Ingredients do not exist: %v.", missing))
	}

	lines := make([]models.RecipeIngredient, 0, len(in))
	for _, line := range in {
		lines = append(lines, models.RecipeIngredient{
			IngredientID: line.ID,
			Ingredient:   byID[line.ID],
			Amount:       line.Amount,
		})
	}
	return lines, nil
}

func (s *RecipeService) resolveTags(ctx context.Context, ids []uint) ([]models.Tag, error) {
	found, err := s.catalog.TagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]bool, len(found))
	for _, t := range found {
		known[t.ID] = true
	}
	if missing := missingIDs(ids, func(id uint) bool { return known[id] }); len(missing) > 0 {
		return nil, invalid("tags", fmt.Sprintf("Tags do not exist: %v.", missing))
	}
	return found, nil
}

func missingIDs(ids []uint, exists func(uint) bool) []uint {
	var missing []uint
	for _, id := range ids {
		if !exists(id) {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}
