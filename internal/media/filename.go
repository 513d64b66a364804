package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
}

// AllowedFile reports whether name carries one of the accepted image extensions.
func AllowedFile(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return allowedExtensions[ext]
}

// uniqueFilename returns a random name that keeps the original (lower-cased) extension.
func uniqueFilename(original string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(filepath.Base(original)))
}

// validateOwnerID checks an id is usable as a single path segment.
func validateOwnerID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("invalid id %q", id)
	}
	return nil
}
