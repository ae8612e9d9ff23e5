package services_test

import (
	"context"
	"encoding/base64"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRecipeService(f *fixture, images services.ImageStore, events services.EventPublisher) *services.RecipeService {
	return services.NewRecipeService(f.recipes, f.catalog, f.relations, images, events, 6)
}

func (f *fixture) pancakes() services.CreateRecipeInput {
	return services.CreateRecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Tags:        []uint{f.tags["breakfast"].ID},
		Ingredients: []services.IngredientAmountInput{
			{ID: f.ingredients["flour"].ID, Amount: 200},
			{ID: f.ingredients["milk"].ID, Amount: 300},
		},
	}
}

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	var fieldErrs services.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	return fieldErrs.Fields()
}

func TestRecipeService_CreateAndGetRoundTrip(t *testing.T) {
	f := newFixture(t)
	publisher := new(MockPublisher)
	svc := newRecipeService(f, nil, publisher)
	chef := f.user(t, "chef")
	ctx := context.Background()

	publisher.On("Publish", mock.Anything, services.EventRecipeCreated, mock.AnythingOfType("services.Event")).Return(nil).Once()

	in := f.pancakes()
	created, err := svc.CreateRecipe(ctx, chef, in)
	require.NoError(t, err)
	publisher.AssertExpectations(t)

	got, err := svc.GetRecipe(ctx, nil, created.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Text, got.Text)
	assert.Equal(t, in.CookingTime, got.CookingTime)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "breakfast", got.Tags[0].Slug)
	assert.Equal(t, []services.IngredientAmountView{
		{ID: f.ingredients["flour"].ID, Name: "flour", MeasurementUnit: "g", Amount: 200},
		{ID: f.ingredients["milk"].ID, Name: "milk", MeasurementUnit: "ml", Amount: 300},
	}, got.Ingredients)
	assert.Equal(t, "chef", got.Author.Username)
	assert.False(t, got.IsFavorited)
	assert.False(t, got.IsInShoppingCart)
}

func TestRecipeService_CreateRejectsDuplicateIngredients(t *testing.T) {
	f := newFixture(t)
	svc := newRecipeService(f, nil, nil)
	chef := f.user(t, "chef")

	in := f.pancakes()
	in.Ingredients = append(in.Ingredients, services.IngredientAmountInput{ID: f.ingredients["flour"].ID, Amount: 5})
	_, err := svc.CreateRecipe(context.Background(), chef, in)
	assert.Contains(t, fieldsOf(t, err), "ingredients")
	assert.Zero(t, f.count(t, &models.Recipe{}))
	assert.Zero(t, f.count(t, &models.RecipeIngredient{}))
}

func TestRecipeService_CreateRejectsUnknownReferences(t *testing.T) {
	f := newFixture(t)
	svc := newRecipeService(f, nil, nil)
	chef := f.user(t, "chef")
	ctx := context.Background()

	in := f.pancakes()
	in.Ingredients = append(in.Ingredients, services.IngredientAmountInput{ID: 999, Amount: 1})
	_, err := svc.CreateRecipe(ctx, chef, in)
	assert.Contains(t, fieldsOf(t, err), "ingredients")

	in = f.pancakes()
	in.Tags = []uint{f.tags["dinner"].ID, 999}
	_, err = svc.CreateRecipe(ctx, chef, in)
	assert.Contains(t, fieldsOf(t, err), "tags")

	assert.Zero(t, f.count(t, &models.Recipe{}))
}

func TestRecipeService_CreateBounds(t *testing.T) {
	f := newFixture(t)
	svc := newRecipeService(f, nil, nil)
	chef := f.user(t, "chef")
	ctx := context.Background()

	for _, minutes := range []int{0, -1, 32001} {
		in := f.pancakes()
		in.CookingTime = minutes
		_, err := svc.CreateRecipe(ctx, chef, in)
		assert.Contains(t, fieldsOf(t, err), "cooking_time", minutes)
	}
	for _, amount := range []int{0, 32001} {
		in := f.pancakes()
		in.Ingredients[0].Amount = amount
		_, err := svc.CreateRecipe(ctx, chef, in)
		assert.Contains(t, fieldsOf(t, err), "ingredients", amount)
	}

	in := f.pancakes()
	in.CookingTime = 32000
	in.Ingredients[0].Amount = 32000
	_, err := svc.CreateRecipe(ctx, chef, in)
	assert.NoError(t, err)

	in = f.pancakes()
	in.CookingTime = 1
	in.Ingredients[0].Amount = 1
	_, err = svc.CreateRecipe(ctx, chef, in)
	assert.NoError(t, err)
}

func TestRecipeService_CreateRequiresCollections(t *testing.T) {
	f := newFixture(t)
	svc := newRecipeService(f, nil, nil)
	chef := f.user(t, "chef")

	in := f.pancakes()
	in.Tags = []uint{}
	in.Ingredients = nil
	_, err := svc.CreateRecipe(context.Background(), chef, in)
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "tags")
	assert.Contains(t, fields, "ingredients")
}

func TestRecipeService_CreateWithImage(t *testing.T) {
	f := newFixture(t)
	images := new(MockImageStore)
	svc := newRecipeService(f, images, nil)
	chef := f.user(t, "chef")
	ctx := context.Background()

	images.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > len("recipes/images/") && key[len(key)-4:] == ".png"
	}), "image/png", []byte("png")).Return("/media/recipes/images/x.png", nil).Once()

	in := f.pancakes()
	in.Image = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png"))
	created, err := svc.CreateRecipe(ctx, chef, in)
	require.NoError(t, err)
	assert.Equal(t, "/media/recipes/images/x.png", created.Image)
	images.AssertExpectations(t)

	in.Image = "data:text/plain;base64,eA=="
	_, err = svc.CreateRecipe(ctx, chef, in)
	assert.Contains(t, fieldsOf(t, err), "image")
}

func TestRecipeService_PartialUpdateKeepsCollections(t *testing.T) {
	f := newFixture(t)
	svc := newRecipeService(f, nil, nil)
	chef := f.user(t, "chef")
	ctx := context.Background()

	created, err := svc.CreateRecipe(ctx, chef, f.pancakes())
	require.NoError(t, err)

	name := "Crepes"
	updated, err := svc.UpdateRecipe(ctx, chef, created.ID, services.UpdateRecipeInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Crepes", updated.Name)
	assert.Equal(t, created.Ingredients, updated.Ingredients)
	assert.Equal(t, created.Tags, updated.Tags)
	assert.Equal(t, created.CookingTime, updated.CookingTime)
	assert.Equal(t, created.Text, updated.Text)
}

func TestRecipeService_UpdateReplacesCollections(t *testing.T) {
	f := newFixture(t)
	svc := newRecipeService(f, nil, nil)
	chef := f.user(t, "chef")
	ctx := context.Background()

	created, err := svc.CreateRecipe(ctx, chef, f.pancakes())
	require.NoError(t, err)

	updated, err := svc.UpdateRecipe(ctx, chef, created.ID, services.UpdateRecipeInput{
		Tags:        []uint{f.tags["dinner"].ID},
		Ingredients: []services.IngredientAmountInput{{ID: f.ingredients["egg"].ID, Amount: 2}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "egg", updated.Ingredients[0].Name)
	assert.Equal(t, 2, updated.Ingredients[0].Amount)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "dinner", updated.Tags[0].Slug)
	assert.EqualValues(t, 1, f.count(t, &models.RecipeIngredient{}))

	// An empty collection is rejected rather than clearing the recipe.
	_, err = svc.UpdateRecipe(ctx, chef, created.ID, services.UpdateRecipeInput{Ingredients: []services.IngredientAmountInput{}})
	assert.Contains(t, fieldsOf(t, err), "ingredients")
	assert.EqualValues(t, 1, f.count(t, &models.RecipeIngredient{}))
}

func TestRecipeService_OnlyAuthorMutates(t *testing.T) {
	f := newFixture(t)
	svc := newRecipeService(f, nil, nil)
	chef := f.user(t, "chef")
	other := f.user(t, "other")
	ctx := context.Background()

	created, err := svc.CreateRecipe(ctx, chef, f.pancakes())
	require.NoError(t, err)

	name := "Stolen"
	_, err = svc.UpdateRecipe(ctx, other, created.ID, services.UpdateRecipeInput{Name: &name})
	assert.ErrorIs(t, err, services.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteRecipe(ctx, other, created.ID), services.ErrForbidden)

	got, err := svc.GetRecipe(ctx, nil, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Name)

	_, err = svc.UpdateRecipe(ctx, chef, 999, services.UpdateRecipeInput{Name: &name})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRecipeService_Delete(t *testing.T) {
	f := newFixture(t)
	publisher := new(MockPublisher)
	svc := newRecipeService(f, nil, publisher)
	chef := f.user(t, "chef")
	ctx := context.Background()

	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	created, err := svc.CreateRecipe(ctx, chef, f.pancakes())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRecipe(ctx, chef, created.ID))
	publisher.AssertCalled(t, "Publish", mock.Anything, services.EventRecipeDeleted, mock.Anything)
	assert.Zero(t, f.count(t, &models.Recipe{}))
	assert.Zero(t, f.count(t, &models.RecipeIngredient{}))

	_, err = svc.GetRecipe(ctx, chef, created.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteRecipe(ctx, chef, created.ID), services.ErrNotFound)
}

func TestRecipeService_ListRecipes(t *testing.T) {
	f := newFixture(t)
	svc := newRecipeService(f, nil, nil)
	relations := services.NewRelationService(f.relations, f.recipes, f.users, nil)
	chef := f.user(t, "chef")
	fan := f.user(t, "fan")
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 8; i++ {
		in := f.pancakes()
		if i%2 == 1 {
			in.Tags = []uint{f.tags["dinner"].ID}
		}
		created, err := svc.CreateRecipe(ctx, chef, in)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	_, err := relations.AddFavorite(ctx, fan, ids[0])
	require.NoError(t, err)
	_, err = relations.AddToShoppingCart(ctx, fan, ids[7])
	require.NoError(t, err)
	_, err = relations.Subscribe(ctx, fan, chef.ID, nil)
	require.NoError(t, err)

	page, err := svc.ListRecipes(ctx, nil, services.RecipeFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 8, page.Count)
	require.Len(t, page.Results, 6)
	assert.Equal(t, ids[7], page.Results[0].ID)
	assert.True(t, page.HasNext())
	assert.False(t, page.HasPrevious())

	second, err := svc.ListRecipes(ctx, nil, services.RecipeFilter{Page: services.PageRequest{Page: 2}})
	require.NoError(t, err)
	assert.Len(t, second.Results, 2)
	assert.False(t, second.HasNext())

	// Anonymous requesters cannot filter by their relations.
	anon, err := svc.ListRecipes(ctx, nil, services.RecipeFilter{IsFavorited: true})
	require.NoError(t, err)
	assert.EqualValues(t, 8, anon.Count)

	favorites, err := svc.ListRecipes(ctx, fan, services.RecipeFilter{IsFavorited: true})
	require.NoError(t, err)
	require.Len(t, favorites.Results, 1)
	assert.True(t, favorites.Results[0].IsFavorited)
	assert.False(t, favorites.Results[0].IsInShoppingCart)
	assert.True(t, favorites.Results[0].Author.IsSubscribed)

	cart, err := svc.ListRecipes(ctx, fan, services.RecipeFilter{IsInShoppingCart: true})
	require.NoError(t, err)
	require.Len(t, cart.Results, 1)
	assert.Equal(t, ids[7], cart.Results[0].ID)
	assert.True(t, cart.Results[0].IsInShoppingCart)

	dinner, err := svc.ListRecipes(ctx, fan, services.RecipeFilter{Tags: []string{"dinner"}, AuthorID: &chef.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 4, dinner.Count)
}
