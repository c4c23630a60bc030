package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	catalogapp "github.com/cartly/backend/internal/application/catalog"
)

// LocalObjectStorage implements ObjectStorageService on the local filesystem.
// It is the default provider for development so the storefront runs without
// an S3 backend.
type LocalObjectStorage struct {
	dir           string
	publicBaseURL string
}

// NewLocalObjectStorage creates a LocalObjectStorage rooted at dir.
// Files are served from publicBaseURL by the HTTP static handler.
func NewLocalObjectStorage(dir, publicBaseURL string) (*LocalObjectStorage, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = "/uploads"
	}
	return &LocalObjectStorage{
		dir:           dir,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// Ensure LocalObjectStorage implements ObjectStorageService
var _ catalogapp.ObjectStorageService = (*LocalObjectStorage)(nil)

// Upload writes the data to disk and returns the public URL
func (s *LocalObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) (string, error) {
	path, err := s.resolve(storageKey)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	return s.PublicURL(storageKey), nil
}

// GenerateUploadURL is not supported for local storage; clients upload
// through the HTTP upload endpoint instead.
func (s *LocalObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	return s.PublicURL(storageKey), time.Now().Add(expiresIn), nil
}

// GenerateDownloadURL returns the public URL; local files are not signed
func (s *LocalObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	return s.PublicURL(storageKey), time.Now().Add(expiresIn), nil
}

// DeleteObject removes the file from disk
func (s *LocalObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	path, err := s.resolve(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// ObjectExists checks if the file exists on disk
func (s *LocalObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	path, err := s.resolve(storageKey)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PublicURL returns the public URL for a stored object
func (s *LocalObjectStorage) PublicURL(storageKey string) string {
	return s.publicBaseURL + "/" + strings.TrimPrefix(storageKey, "/")
}

// resolve maps a storage key to a filesystem path, rejecting traversal
func (s *LocalObjectStorage) resolve(storageKey string) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}
	// Inspect the raw key: cleaning a rooted path swallows ".." segments,
	// so the check has to run before any normalization
	for _, segment := range strings.Split(filepath.ToSlash(storageKey), "/") {
		if segment == ".." {
			return "", errors.New("invalid storage key")
		}
	}
	return filepath.Join(s.dir, filepath.Clean("/"+storageKey)), nil
}
