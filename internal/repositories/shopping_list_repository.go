package repositories

import (
	"context"
	"fmt"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

// IngredientTotal is one aggregated shopping list line.
type IngredientTotal struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// ShoppingListRepository aggregates the ingredients of a user's shopping cart.
type ShoppingListRepository interface {
	CountEntries(ctx context.Context, userID uint) (int64, error)
	Totals(ctx context.Context, userID uint) ([]IngredientTotal, error)
}

// GORMShoppingListRepository is a GORM implementation of ShoppingListRepository.
type GORMShoppingListRepository struct {
	db *gorm.DB
}

// NewGORMShoppingListRepository creates a new instance of GORMShoppingListRepository.
func NewGORMShoppingListRepository(db *gorm.DB) *GORMShoppingListRepository {
	return &GORMShoppingListRepository{db: db}
}

// CountEntries returns how many recipes the user has in the cart.
func (r *GORMShoppingListRepository) CountEntries(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ShoppingListEntry{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count shopping list entries: %w", err)
	}
	return count, nil
}

// Totals sums ingredient amounts across every recipe in the user's cart.
// Lines are grouped by ingredient name; the unit reported is the smallest one seen for
// that name. Ordered alphabetically by name.
func (r *GORMShoppingListRepository) Totals(ctx context.Context, userID uint) ([]IngredientTotal, error) {
	var totals []IngredientTotal
	err := r.db.WithContext(ctx).
		Table("shopping_list_entries").
		Select("ingredients.name AS name, MIN(ingredients.measurement_unit) AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_list_entries.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_list_entries.user_id = ?", userID).
		Group("ingredients.name").
		Order("ingredients.name").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return totals, nil
}
