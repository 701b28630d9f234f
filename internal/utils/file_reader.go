package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
)

// FileReader reads input files, caching contents until a file changes on disk
type FileReader struct {
	contents *FileCache[string]
}

// NewFileReader creates a new FileReader instance with caching
func NewFileReader() *FileReader {
	return &FileReader{contents: NewFileCache[string]()}
}

// ReadFile reads a file and returns its contents as a string with caching
func (fr *FileReader) ReadFile(filePath string) (string, error) {
	cleanPath, err := fr.validateAndCleanPath(filePath)
	if err != nil {
		return "", err
	}

	if cached, ok := fr.contents.Get(cleanPath); ok {
		return cached, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", errors.Annotatef(err, "failed to read file %s", filepath.Base(cleanPath))
	}

	text := string(content)
	// a failed stat only means the next read goes to disk again
	_ = fr.contents.Put(cleanPath, text)
	return text, nil
}

// InvalidateFile removes a specific file from the cache
func (fr *FileReader) InvalidateFile(filePath string) {
	fr.contents.Delete(filepath.Clean(filePath))
}

// ClearCache clears all cached files
func (fr *FileReader) ClearCache() {
	fr.contents.Clear()
}

// CacheStats returns statistics about the content cache
func (fr *FileReader) CacheStats() CacheStats {
	return fr.contents.Stats()
}

// validateAndCleanPath validates and cleans a file path
func (fr *FileReader) validateAndCleanPath(filePath string) (string, error) {
	if err := NotEmpty("filePath")(filePath); err != nil {
		return "", err
	}

	cleanPath := filepath.Clean(filePath)

	// a cleaned relative path may only climb at its start
	if strings.Contains(cleanPath, "..") && !strings.HasPrefix(cleanPath, "..") {
		return "", errors.Errorf("path traversal not allowed in file path: %s", filePath)
	}

	if _, err := os.Stat(cleanPath); os.IsNotExist(err) {
		return "", errors.WithHint(errors.Errorf("file does not exist: %s", cleanPath),
			"check the input paths passed on the command line")
	}

	return cleanPath, nil
}
