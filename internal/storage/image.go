// Package storage keeps uploaded recipe images on S3 compatible object storage or on
// the local disk.
package storage

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidImage is returned for payloads that are not a supported base64 image.
var ErrInvalidImage = errors.New("invalid image")

// AllowImage maps accepted content types to file extensions.
var AllowImage = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeDataURI parses "data:image/png;base64,<payload>".
func DecodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(uri), ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidImage
	}
	contentType := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"))
	ext, ok := AllowImage[contentType]
	if !ok {
		return nil, ErrInvalidImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}
	return &Image{Data: data, ContentType: contentType, Extension: ext}, nil
}
