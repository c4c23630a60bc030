package catalog

import (
	"context"
	"time"
)

// AllowedImageContentTypes is the whitelist of content types accepted
// for product image uploads. SVG is excluded because it can carry
// scripts.
var AllowedImageContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStorageService defines the interface for object storage
// operations. It is implemented by the infrastructure layer (S3 or the
// local filesystem).
type ObjectStorageService interface {
	// Upload stores an object and returns its public URL
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) (string, error)

	// GenerateUploadURL generates a presigned URL for uploading a file
	// Returns the upload URL and expiration time
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)

	// PublicURL returns the public URL for a storage key without
	// touching the backend
	PublicURL(storageKey string) string
}
