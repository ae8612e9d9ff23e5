package services_test

import (
	"context"
	"testing"

	"foodgram/internal/database"
	"foodgram/internal/models"
	"foodgram/internal/repositories"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

// MockImageStore is a mock implementation of services.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// fixture wires real GORM repositories over an in-memory sqlite database.
type fixture struct {
	db          *gorm.DB
	users       *repositories.GORMUserRepository
	catalog     *repositories.GORMCatalogRepository
	recipes     *repositories.GORMRecipeRepository
	relations   *repositories.GORMRelationRepository
	shopping    *repositories.GORMShoppingListRepository
	ingredients map[string]models.Ingredient
	tags        map[string]models.Tag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.OpenTestDB(t)
	f := &fixture{
		db:          db,
		users:       repositories.NewGORMUserRepository(db),
		catalog:     repositories.NewGORMCatalogRepository(db),
		recipes:     repositories.NewGORMRecipeRepository(db),
		relations:   repositories.NewGORMRelationRepository(db),
		shopping:    repositories.NewGORMShoppingListRepository(db),
		ingredients: map[string]models.Ingredient{},
		tags:        map[string]models.Tag{},
	}

	ingredients := []models.Ingredient{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "sugar", MeasurementUnit: "g"},
		{Name: "milk", MeasurementUnit: "ml"},
		{Name: "egg", MeasurementUnit: "pcs"},
	}
	require.NoError(t, db.Create(&ingredients).Error)
	for _, i := range ingredients {
		f.ingredients[i.Name] = i
	}
	tags := []models.Tag{
		{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		{Name: "Dinner", Color: "#49B64E", Slug: "dinner"},
	}
	require.NoError(t, db.Create(&tags).Error)
	for _, tag := range tags {
		f.tags[tag.Slug] = tag
	}
	return f
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Email: name + "@example.com", Username: name, FirstName: name, LastName: "Test", Password: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
