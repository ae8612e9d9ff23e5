package repositories

import (
	"context"
	"fmt"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

// SaveOptions selects which owned collections SaveAggregate rewrites on update.
// New recipes always persist both collections.
type SaveOptions struct {
	ReplaceIngredients bool
	ReplaceTags        bool
}

// RecipeQuery narrows a recipe listing. Nil pointers mean no filter.
type RecipeQuery struct {
	TagSlugs         []string
	AuthorID         *uint
	FavoritedBy      *uint
	InShoppingCartOf *uint
	Offset           int
	Limit            int
}

// RecipeRepository loads and stores the recipe aggregate as one unit.
type RecipeRepository interface {
	LoadAggregate(ctx context.Context, id uint) (*models.Recipe, error)
	SaveAggregate(ctx context.Context, recipe *models.Recipe, opts SaveOptions) error
	DeleteAggregate(ctx context.Context, id uint) error
	List(ctx context.Context, query RecipeQuery) ([]models.Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

// GORMRecipeRepository is a GORM implementation of RecipeRepository.
type GORMRecipeRepository struct {
	db *gorm.DB
}

// NewGORMRecipeRepository creates a new instance of GORMRecipeRepository.
func NewGORMRecipeRepository(db *gorm.DB) *GORMRecipeRepository {
	return &GORMRecipeRepository{db: db}
}

func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// LoadAggregate retrieves a recipe with author, tags and ingredient lines.
func (r *GORMRecipeRepository) LoadAggregate(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withAggregate(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipe %d: %w", id, translate(err))
	}
	return &recipe, nil
}

// SaveAggregate persists the recipe row and its owned collections in one transaction.
// Owned collections are replaced by delete-all-then-insert.
func (r *GORMRecipeRepository) SaveAggregate(ctx context.Context, recipe *models.Recipe, opts SaveOptions) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		replaceIngredients, replaceTags := opts.ReplaceIngredients, opts.ReplaceTags
		if recipe.ID == 0 {
			if err := tx.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
				return fmt.Errorf("failed to create recipe: %w", translate(err))
			}
			replaceIngredients, replaceTags = true, true
		} else {
			res := tx.Model(recipe).
				Select("name", "image", "text", "cooking_time", "updated_at").
				Updates(recipe)
			if res.Error != nil {
				return fmt.Errorf("failed to update recipe %d: %w", recipe.ID, translate(res.Error))
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("recipe %d not found for update: %w", recipe.ID, ErrNotFound)
			}
		}

		if replaceIngredients {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return fmt.Errorf("failed to clear recipe ingredients: %w", err)
			}
			for i := range recipe.Ingredients {
				recipe.Ingredients[i].ID = 0
				recipe.Ingredients[i].RecipeID = recipe.ID
			}
			if len(recipe.Ingredients) > 0 {
				if err := tx.Omit("Ingredient").Create(&recipe.Ingredients).Error; err != nil {
					return fmt.Errorf("failed to store recipe ingredients: %w", translate(err))
				}
			}
		}

		if replaceTags {
			if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipe.ID).Error; err != nil {
				return fmt.Errorf("failed to clear recipe tags: %w", err)
			}
			if len(recipe.Tags) > 0 {
				rows := make([]map[string]interface{}, 0, len(recipe.Tags))
				for _, tag := range recipe.Tags {
					rows = append(rows, map[string]interface{}{"recipe_id": recipe.ID, "tag_id": tag.ID})
				}
				if err := tx.Table("recipe_tags").Create(rows).Error; err != nil {
					return fmt.Errorf("failed to store recipe tags: %w", translate(err))
				}
			}
		}
		return nil
	})
}

// DeleteAggregate removes the recipe together with its ingredient lines, tag links,
// favorites and shopping cart entries.
func (r *GORMRecipeRepository) DeleteAggregate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		children := []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingListEntry{}}
		for _, child := range children {
			if err := tx.Where("recipe_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete recipe %d children: %w", id, err)
			}
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete recipe %d tags: %w", id, err)
		}
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete recipe %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("recipe %d not found for delete: %w", id, ErrNotFound)
		}
		return nil
	})
}

// List returns one page of recipes matching query, newest first, with the total count.
func (r *GORMRecipeRepository) List(ctx context.Context, query RecipeQuery) ([]models.Recipe, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Recipe{})
		if len(query.TagSlugs) > 0 {
			q = q.Where("recipes.id IN (?)", r.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", query.TagSlugs))
		}
		if query.AuthorID != nil {
			q = q.Where("recipes.author_id = ?", *query.AuthorID)
		}
		if query.FavoritedBy != nil {
			q = q.Where("recipes.id IN (?)", r.db.Model(&models.Favorite{}).
				Select("recipe_id").Where("user_id = ?", *query.FavoritedBy))
		}
		if query.InShoppingCartOf != nil {
			q = q.Where("recipes.id IN (?)", r.db.Model(&models.ShoppingListEntry{}).
				Select("recipe_id").Where("user_id = ?", *query.InShoppingCartOf))
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	q := withAggregate(filtered()).Order("recipes.id DESC").Offset(query.Offset)
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

// ListByAuthor returns the author's newest recipes. A limit of zero or less returns all.
func (r *GORMRecipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	q := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes of author %d: %w", authorID, err)
	}
	return recipes, nil
}

// CountByAuthors returns the number of recipes per author.
func (r *GORMRecipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}
