// Command loaddata fills the ingredient catalog from a CSV file and upserts tags from a
// YAML fixture.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gofiber/fiber/v2/log"
	"gopkg.in/yaml.v3"

	"foodgram/internal/app"
	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/models"
	"foodgram/internal/services"
)

type tagFixtures struct {
	Tags []models.Tag `yaml:"tags"`
}

// decodeTags reads a YAML document of the form "tags: [{name, color, slug}]".
func decodeTags(r io.Reader) ([]models.Tag, error) {
	var fixtures tagFixtures
	if err := yaml.NewDecoder(r).Decode(&fixtures); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode tag fixtures: %w", err)
	}
	return fixtures.Tags, nil
}

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.csv", "CSV file with name,measurement_unit rows; empty to skip")
	tagsPath := flag.String("tags", "data/tags.yaml", "YAML tag fixtures; empty to skip")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	// Redis is wired so an import invalidates the catalog listings the API has cached.
	redisClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisClient != nil {
		defer redisClient.Close()
	}
	catalog := app.NewServices(app.Deps{Config: cfg, DB: db, Redis: redisClient}).Catalog
	ctx := context.Background()

	if *ingredientsPath != "" {
		if err := loadIngredients(ctx, catalog, *ingredientsPath); err != nil {
			log.Fatalf("Failed to load ingredients: %v", err)
		}
	}
	if *tagsPath != "" {
		if err := loadTags(ctx, catalog, *tagsPath); err != nil {
			log.Fatalf("Failed to load tags: %v", err)
		}
	}
}

func loadIngredients(ctx context.Context, catalog *services.CatalogService, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	log.Infof("Loading ingredients from %s...", path)
	n, err := catalog.ImportIngredients(ctx, f)
	if errors.Is(err, services.ErrCatalogNotEmpty) {
		log.Warn("Ingredients are already loaded, skipping.")
		return nil
	}
	if err != nil {
		return err
	}
	log.Infof("Loaded %d ingredients.", n)
	return nil
}

func loadTags(ctx context.Context, catalog *services.CatalogService, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tags, err := decodeTags(f)
	if err != nil {
		return err
	}
	n, err := catalog.ImportTags(ctx, tags)
	if err != nil {
		return err
	}
	log.Infof("Loaded %d tags.", n)
	return nil
}
