package repositories

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ingredientBatchSize = 500

// CatalogRepository defines the interface for ingredient and tag data access.
type CatalogRepository interface {
	SearchIngredients(ctx context.Context, name string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	IngredientsByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error)
	CountIngredients(ctx context.Context) (int64, error)
	CreateIngredients(ctx context.Context, ingredients []models.Ingredient) error
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	TagsByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	UpsertTags(ctx context.Context, tags []models.Tag) error
}

// GORMCatalogRepository is a GORM implementation of CatalogRepository.
type GORMCatalogRepository struct {
	db *gorm.DB
}

// NewGORMCatalogRepository creates a new instance of GORMCatalogRepository.
func NewGORMCatalogRepository(db *gorm.DB) *GORMCatalogRepository {
	return &GORMCatalogRepository{db: db}
}

// SearchIngredients returns ingredients whose name contains name, case-insensitively.
// Prefix matches come first, then the remaining substring matches, each alphabetical.
// An empty name returns the whole catalog ordered by name.
func (r *GORMCatalogRepository) SearchIngredients(ctx context.Context, name string) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	q := r.db.WithContext(ctx).Model(&models.Ingredient{})
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		if err := q.Order("name").Order("id").Find(&ingredients).Error; err != nil {
			return nil, fmt.Errorf("failed to list ingredients: %w", err)
		}
		return ingredients, nil
	}

	prefix := escapeLike(name) + "%"
	pattern := "%" + escapeLike(name) + "%"
	if err := q.Where("LOWER(name) LIKE ? ESCAPE '!'", prefix).
		Order("name").Order("id").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	var inner []models.Ingredient
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '!'", pattern).
		Where("LOWER(name) NOT LIKE ? ESCAPE '!'", prefix).
		Order("name").Order("id").Find(&inner).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	return append(ingredients, inner...), nil
}

// GetIngredient retrieves an ingredient by its ID.
func (r *GORMCatalogRepository) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get ingredient %d: %w", id, translate(err))
	}
	return &ingredient, nil
}

// IngredientsByIDs returns the ingredients that exist among ids.
func (r *GORMCatalogRepository) IngredientsByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve ingredients: %w", err)
	}
	return ingredients, nil
}

// CountIngredients returns the number of catalog ingredients.
func (r *GORMCatalogRepository) CountIngredients(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Ingredient{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count ingredients: %w", err)
	}
	return count, nil
}

// CreateIngredients inserts all ingredients in one transaction.
func (r *GORMCatalogRepository) CreateIngredients(ctx context.Context, ingredients []models.Ingredient) error {
	if len(ingredients) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(ingredients, ingredientBatchSize).Error; err != nil {
			return fmt.Errorf("failed to create ingredients: %w", translate(err))
		}
		return nil
	})
}

// ListTags returns all tags ordered by id.
func (r *GORMCatalogRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// GetTag retrieves a tag by its ID.
func (r *GORMCatalogRepository) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get tag %d: %w", id, translate(err))
	}
	return &tag, nil
}

// TagsByIDs returns the tags that exist among ids.
func (r *GORMCatalogRepository) TagsByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	return tags, nil
}

// UpsertTags inserts tags, updating name and color of tags whose slug already exists.
func (r *GORMCatalogRepository) UpsertTags(ctx context.Context, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range tags {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "color"}),
			}).Create(&tags[i]).Error
			if err != nil {
				return fmt.Errorf("failed to upsert tag %q: %w", tags[i].Slug, translate(err))
			}
		}
		return nil
	})
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
