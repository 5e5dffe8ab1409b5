package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalFileStore persists uploaded documents on the local filesystem
// under baseDir/<category>/ and returns public URL paths rooted at
// urlPrefix. Stored names are random so uploads never collide or leak
// the original name.
type LocalFileStore struct {
	baseDir   string
	urlPrefix string
	logger    *zap.Logger
}

// NewLocalFileStore creates a new LocalFileStore
func NewLocalFileStore(baseDir, urlPrefix string, logger *zap.Logger) *LocalFileStore {
	return &LocalFileStore{
		baseDir:   baseDir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		logger:    logger,
	}
}

// Save writes content under the given category and returns the public
// URL path of the stored file
func (s *LocalFileStore) Save(category, originalName string, content []byte) (string, error) {
	name := uuid.NewString() + sanitizeExt(originalName)
	fullPath := filepath.Join(s.baseDir, category, name)

	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create upload directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return s.urlPrefix + "/" + category + "/" + name, nil
}

// validatePath checks that the resolved path stays within baseDir
func (s *LocalFileStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}

// sanitizeExt keeps only a plain extension from the uploaded name.
// Anything with separators or without a dot falls back to empty.
func sanitizeExt(originalName string) string {
	ext := filepath.Ext(filepath.Base(originalName))
	if ext == "." || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return strings.ToLower(ext)
}
