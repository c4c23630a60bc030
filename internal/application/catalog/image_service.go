package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cartly/backend/internal/domain/shared"
)

// ImageServiceConfig holds configuration for the image upload service
type ImageServiceConfig struct {
	// MaxUploadSize is the maximum accepted image size in bytes
	MaxUploadSize int64
	// KeyPrefix is prepended to every storage key
	KeyPrefix string
	// DownloadURLExpiry is the validity of presigned download URLs
	DownloadURLExpiry time.Duration
}

// DefaultImageServiceConfig returns the default configuration
func DefaultImageServiceConfig() ImageServiceConfig {
	return ImageServiceConfig{
		MaxUploadSize:     5 << 20,
		KeyPrefix:         "products",
		DownloadURLExpiry: time.Hour,
	}
}

// UploadImageResult is returned after a successful image upload
type UploadImageResult struct {
	URL        string `json:"imageUrl"`
	StorageKey string `json:"storageKey"`
}

// ImageService uploads product images to object storage
type ImageService struct {
	storage ObjectStorageService
	config  ImageServiceConfig
	logger  *zap.Logger
}

// NewImageService creates a new ImageService
func NewImageService(storage ObjectStorageService, logger *zap.Logger) *ImageService {
	return &ImageService{
		storage: storage,
		config:  DefaultImageServiceConfig(),
		logger:  logger,
	}
}

// SetConfig sets the service configuration
func (s *ImageService) SetConfig(config ImageServiceConfig) {
	s.config = config
}

// Upload stores an image and returns its public URL. The storage key is
// generated server side so callers cannot overwrite each other's objects.
func (s *ImageService) Upload(ctx context.Context, fileName, contentType string, data []byte) (*UploadImageResult, error) {
	ext, ok := AllowedImageContentTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, shared.NewDomainError("UNSUPPORTED_MEDIA_TYPE", "Only JPEG, PNG, GIF and WebP images are accepted")
	}
	if len(data) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Image data cannot be empty")
	}
	if int64(len(data)) > s.config.MaxUploadSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE",
			fmt.Sprintf("Image exceeds the maximum size of %d bytes", s.config.MaxUploadSize))
	}

	key := s.storageKey(ext)
	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		s.logger.Error("Image upload failed",
			zap.String("storage_key", key),
			zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_FAILED", "Failed to store the image")
	}

	s.logger.Info("Image uploaded",
		zap.String("storage_key", key),
		zap.String("file_name", fileName),
		zap.Int("size", len(data)))

	return &UploadImageResult{URL: url, StorageKey: key}, nil
}

// Delete removes an uploaded image from storage
func (s *ImageService) Delete(ctx context.Context, storageKey string) error {
	if !strings.HasPrefix(storageKey, s.config.KeyPrefix+"/") {
		return shared.NewDomainError("VALIDATION_ERROR", "Invalid storage key")
	}

	exists, err := s.storage.ObjectExists(ctx, storageKey)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewDomainError("NOT_FOUND", "Image not found")
	}

	if err := s.storage.DeleteObject(ctx, storageKey); err != nil {
		return err
	}

	s.logger.Info("Image deleted", zap.String("storage_key", storageKey))
	return nil
}

// DownloadURL returns a presigned download URL for an uploaded image
func (s *ImageService) DownloadURL(ctx context.Context, storageKey string) (string, time.Time, error) {
	return s.storage.GenerateDownloadURL(ctx, storageKey, s.config.DownloadURLExpiry)
}

func (s *ImageService) storageKey(ext string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s%s", s.config.KeyPrefix, now.Year(), now.Month(), uuid.New().String(), ext)
}
