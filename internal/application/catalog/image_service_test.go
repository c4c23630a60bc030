package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cartly/backend/internal/domain/shared"
)

func TestImageService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads a valid image", func(t *testing.T) {
		storage := new(MockObjectStorage)
		svc := NewImageService(storage, zap.NewNop())

		storage.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "products/") && strings.HasSuffix(key, ".jpg")
		}), []byte("jpeg-bytes"), "image/jpeg").
			Return("https://cdn.example.com/products/x.jpg", nil)

		result, err := svc.Upload(ctx, "jacket.jpg", "image/jpeg", []byte("jpeg-bytes"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/products/x.jpg", result.URL)
		assert.True(t, strings.HasPrefix(result.StorageKey, "products/"))
	})

	t.Run("rejects a disallowed content type", func(t *testing.T) {
		storage := new(MockObjectStorage)
		svc := NewImageService(storage, zap.NewNop())

		_, err := svc.Upload(ctx, "logo.svg", "image/svg+xml", []byte("<svg/>"))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", domainErr.Code)
		storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects an oversized image", func(t *testing.T) {
		storage := new(MockObjectStorage)
		svc := NewImageService(storage, zap.NewNop())
		svc.SetConfig(ImageServiceConfig{MaxUploadSize: 4, KeyPrefix: "products"})

		_, err := svc.Upload(ctx, "big.png", "image/png", []byte("12345"))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FILE_TOO_LARGE", domainErr.Code)
	})

	t.Run("rejects empty data", func(t *testing.T) {
		storage := new(MockObjectStorage)
		svc := NewImageService(storage, zap.NewNop())

		_, err := svc.Upload(ctx, "empty.png", "image/png", nil)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})
}

func TestImageService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an existing object", func(t *testing.T) {
		storage := new(MockObjectStorage)
		svc := NewImageService(storage, zap.NewNop())

		storage.On("ObjectExists", ctx, "products/2026/08/x.jpg").Return(true, nil)
		storage.On("DeleteObject", ctx, "products/2026/08/x.jpg").Return(nil)

		require.NoError(t, svc.Delete(ctx, "products/2026/08/x.jpg"))
		storage.AssertExpectations(t)
	})

	t.Run("rejects keys outside the image prefix", func(t *testing.T) {
		storage := new(MockObjectStorage)
		svc := NewImageService(storage, zap.NewNop())

		err := svc.Delete(ctx, "../secrets/key.pem")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		storage.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
	})

	t.Run("reports a missing object", func(t *testing.T) {
		storage := new(MockObjectStorage)
		svc := NewImageService(storage, zap.NewNop())

		storage.On("ObjectExists", ctx, "products/2026/08/gone.jpg").Return(false, nil)

		err := svc.Delete(ctx, "products/2026/08/gone.jpg")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}
