package services_test

import (
	"context"
	"testing"

	"foodgram/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecipesLimit(t *testing.T) {
	limit, err := services.ParseRecipesLimit("")
	require.NoError(t, err)
	assert.Nil(t, limit)

	limit, err = services.ParseRecipesLimit("0")
	require.NoError(t, err)
	assert.Equal(t, 0, *limit)

	limit, err = services.ParseRecipesLimit("3")
	require.NoError(t, err)
	assert.Equal(t, 3, *limit)

	for _, raw := range []string{"-1", "abc", "1.5"} {
		_, err := services.ParseRecipesLimit(raw)
		assert.Contains(t, fieldsOf(t, err), "recipes_limit", raw)
	}
}

func TestUserService_Profiles(t *testing.T) {
	f := newFixture(t)
	relations := services.NewRelationService(f.relations, f.recipes, f.users, nil)
	svc := services.NewUserService(f.users, f.recipes, f.relations, 2)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	f.user(t, "carol")
	ctx := context.Background()

	_, err := relations.Subscribe(ctx, alice, bob.ID, nil)
	require.NoError(t, err)

	view, err := svc.GetUser(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.True(t, view.IsSubscribed)

	view, err = svc.GetUser(ctx, nil, bob.ID)
	require.NoError(t, err)
	assert.False(t, view.IsSubscribed)

	_, err = svc.GetUser(ctx, alice, 999)
	assert.ErrorIs(t, err, services.ErrNotFound)

	me := svc.Me(alice)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.False(t, me.IsSubscribed)

	page, err := svc.ListUsers(ctx, alice, services.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "alice", page.Results[0].Username)
	assert.True(t, page.Results[1].IsSubscribed)
	assert.True(t, page.HasNext())

	last, err := svc.ListUsers(ctx, alice, services.PageRequest{Page: 2})
	require.NoError(t, err)
	require.Len(t, last.Results, 1)
	assert.Equal(t, "carol", last.Results[0].Username)
}

func TestUserService_ListSubscriptions(t *testing.T) {
	f := newFixture(t)
	recipes := newRecipeService(f, nil, nil)
	relations := services.NewRelationService(f.relations, f.recipes, f.users, nil)
	svc := services.NewUserService(f.users, f.recipes, f.relations, 6)
	chef := f.user(t, "chef")
	baker := f.user(t, "baker")
	fan := f.user(t, "fan")
	ctx := context.Background()

	var newest uint
	for i := 0; i < 3; i++ {
		created, err := recipes.CreateRecipe(ctx, chef, f.pancakes())
		require.NoError(t, err)
		newest = created.ID
	}
	for _, author := range []uint{chef.ID, baker.ID} {
		_, err := relations.Subscribe(ctx, fan, author, nil)
		require.NoError(t, err)
	}

	limit := 1
	page, err := svc.ListSubscriptions(ctx, fan, services.PageRequest{}, &limit)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)
	require.Len(t, page.Results, 2)

	byName := map[string]services.SubscriptionView{}
	for _, v := range page.Results {
		assert.True(t, v.IsSubscribed)
		byName[v.Username] = v
	}
	require.Len(t, byName["chef"].Recipes, 1)
	assert.Equal(t, newest, byName["chef"].Recipes[0].ID)
	assert.EqualValues(t, 3, byName["chef"].RecipesCount)
	assert.Empty(t, byName["baker"].Recipes)
	assert.Zero(t, byName["baker"].RecipesCount)

	all, err := svc.ListSubscriptions(ctx, fan, services.PageRequest{}, nil)
	require.NoError(t, err)
	for _, v := range all.Results {
		if v.Username == "chef" {
			assert.Len(t, v.Recipes, 3)
		}
	}

	zero := 0
	none, err := svc.ListSubscriptions(ctx, fan, services.PageRequest{}, &zero)
	require.NoError(t, err)
	for _, v := range none.Results {
		assert.Empty(t, v.Recipes)
	}
}
