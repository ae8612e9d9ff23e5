package services

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/storage"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// ImageStore persists uploaded recipe images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// storeImage decodes a base64 data URI and saves it under a fresh key.
func storeImage(ctx context.Context, store ImageStore, dataURI string) (string, error) {
	img, err := storage.DecodeDataURI(dataURI)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return "", invalid("image", "Upload a valid image encoded as a base64 data URI.")
		}
		return "", err
	}
	if store == nil {
		return "", errors.New("image storage is not configured")
	}
	key := fmt.Sprintf("recipes/images/%s.%s", uuid.NewString(), img.Extension)
	url, err := store.Put(ctx, key, img.ContentType, img.Data)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

func discardImage(ctx context.Context, store ImageStore, url string) {
	if store == nil || url == "" {
		return
	}
	if err := store.Delete(ctx, url); err != nil {
		log.Warnf("failed to delete image %s: %v", url, err)
	}
}
