package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalStorage writes uploads to a directory served by the API itself
type LocalStorage struct {
	basePath string
	baseURL  string
	logger   zerolog.Logger
}

// NewLocalStorage ensures basePath exists. When baseURL is empty returned
// URLs are relative paths under /uploads.
func NewLocalStorage(basePath, baseURL string, logger zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}, nil
}

// BasePath is the directory files are written to
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Upload copies the request body into Folder under a generated name
func (ls *LocalStorage) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if req.Reader == nil {
		return "", fmt.Errorf("%w: empty file", ErrUploadRejected)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	folder := cleanFolder(req.Folder)
	dir := filepath.Join(ls.basePath, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		ls.logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + extensionFor(req)
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, req.Reader); err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	rel := path.Join(folder, name)
	url := "/uploads/" + rel
	if ls.baseURL != "" {
		url = ls.baseURL + "/" + rel
	}

	ls.logger.Info().Str("filename", req.Filename).Str("saved_as", rel).Str("url", url).Msg("File saved successfully")
	return url, nil
}

// Delete removes a file previously returned by Upload. Missing files are not an error.
func (ls *LocalStorage) Delete(ctx context.Context, fileURL string) error {
	physicalPath := ls.FullPath(fileURL)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		ls.logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}
	if err := os.Remove(physicalPath); err != nil {
		ls.logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	ls.logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// FullPath maps an upload URL back to its location on disk, or "" when the
// URL does not point inside the storage directory.
func (ls *LocalStorage) FullPath(fileURL string) string {
	rel := fileURL
	if ls.baseURL != "" {
		rel = strings.TrimPrefix(rel, ls.baseURL)
	}
	rel = strings.TrimPrefix(rel, "/uploads")
	rel = cleanFolder(rel)
	if rel == "" {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel))
}

// cleanFolder normalises a slash path and strips any attempt to climb out
func cleanFolder(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

func extensionFor(req UploadRequest) string {
	if ext := filepath.Ext(req.Filename); ext != "" {
		return strings.ToLower(ext)
	}
	switch req.ContentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	}
	return ""
}
