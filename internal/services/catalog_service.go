package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
)

// CatalogCache stores serialized catalog listings.
type CatalogCache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	DeletePrefix(ctx context.Context, prefix string) error
}

const (
	ingredientsCachePrefix = "catalog:ingredients:"
	tagsCacheKey           = "catalog:tags"
)

// CatalogService serves the read-only ingredient and tag catalog and loads it.
type CatalogService struct {
	repo     repositories.CatalogRepository
	cache    CatalogCache
	validate *validator.Validate
}

// NewCatalogService creates a new CatalogService. cache may be nil.
func NewCatalogService(repo repositories.CatalogRepository, cache CatalogCache) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, validate: NewValidator()}
}

// ListIngredients searches ingredients by name; prefix matches come first.
func (s *CatalogService) ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error) {
	key := ingredientsCachePrefix + strings.ToLower(strings.TrimSpace(name))
	var ingredients []models.Ingredient
	if s.cached(ctx, key, &ingredients) {
		return ingredients, nil
	}
	ingredients, err := s.repo.SearchIngredients(ctx, name)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, ingredients)
	return ingredients, nil
}

// GetIngredient returns one ingredient.
func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	ingredient, err := s.repo.GetIngredient(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("ingredient %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return ingredient, nil
}

// ListTags returns all tags ordered by id.
func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if s.cached(ctx, tagsCacheKey, &tags) {
		return tags, nil
	}
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, tagsCacheKey, tags)
	return tags, nil
}

// GetTag returns one tag.
func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	tag, err := s.repo.GetTag(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return tag, nil
}

// ImportIngredients loads "name,measurement_unit" CSV rows into an empty catalog.
// It refuses with ErrCatalogNotEmpty when any ingredient already exists.
func (s *CatalogService) ImportIngredients(ctx context.Context, r io.Reader) (int, error) {
	count, err := s.repo.CountIngredients(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, ErrCatalogNotEmpty
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	var ingredients []models.Ingredient
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read ingredients csv: %w", err)
		}
		if len(record) < 2 {
			return 0, fmt.Errorf("ingredients csv line %d: expected name and measurement unit", line)
		}
		name, unit := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		if name == "" || unit == "" {
			return 0, fmt.Errorf("ingredients csv line %d: empty name or measurement unit", line)
		}
		ingredients = append(ingredients, models.Ingredient{Name: name, MeasurementUnit: unit})
	}

	if err := s.repo.CreateIngredients(ctx, ingredients); err != nil {
		return 0, err
	}
	s.invalidate(ctx, ingredientsCachePrefix)
	log.Infof("imported %d ingredients", len(ingredients))
	return len(ingredients), nil
}

// ImportTags validates and upserts tags by slug.
func (s *CatalogService) ImportTags(ctx context.Context, tags []models.Tag) (int, error) {
	for i := range tags {
		if err := validateStruct(s.validate, tags[i]); err != nil {
			return 0, fmt.Errorf("tag %q: %w", tags[i].Slug, err)
		}
	}
	if err := s.repo.UpsertTags(ctx, tags); err != nil {
		return 0, err
	}
	s.invalidate(ctx, tagsCacheKey)
	log.Infof("imported %d tags", len(tags))
	return len(tags), nil
}

func (s *CatalogService) cached(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warnf("catalog cache read %s failed: %v", key, err)
		return false
	}
	return hit
}

func (s *CatalogService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		log.Warnf("catalog cache write %s failed: %v", key, err)
	}
}

func (s *CatalogService) invalidate(ctx context.Context, prefix string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, prefix); err != nil {
		log.Warnf("catalog cache invalidation %s failed: %v", prefix, err)
	}
}
