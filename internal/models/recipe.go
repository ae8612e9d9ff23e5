package models

import "time"

// Bounds shared by request validation and the store.
const (
	MinCookingTime = 1
	MaxCookingTime = 32000
	MinAmount      = 1
	MaxAmount      = 32000
)

// Recipe is the aggregate root. Ingredients and Tags are owned child collections and are
// always written through RecipeRepository.SaveAggregate.
type Recipe struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	AuthorID    uint               `json:"-" gorm:"index;not null"`
	Author      User               `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Name        string             `json:"name" gorm:"type:varchar(200);not null"`
	Image       string             `json:"image" gorm:"type:varchar(500)"`
	Text        string             `json:"text" gorm:"type:text;not null"`
	CookingTime int                `json:"cooking_time" gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1"`
	Tags        []Tag              `json:"tags" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredient `json:"ingredients" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `json:"-"`
	UpdatedAt   time.Time          `json:"-"`
}

// RecipeIngredient joins a recipe with a catalog ingredient and carries the amount.
type RecipeIngredient struct {
	ID           uint       `json:"-" gorm:"primaryKey"`
	RecipeID     uint       `json:"-" gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint       `json:"id" gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	Ingredient   Ingredient `json:"-" gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
	Amount       int        `json:"amount" gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1"`
}
