// Package storage stores uploaded incident photos on the local
// filesystem and hands back the URL path under which the HTTP layer
// serves them. The ingestion pipeline only ever sees these references,
// never the bytes.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the path under which stored photos are served.
const URLPrefix = "/uploads"

// FileStore saves uploaded photo bytes under random names in one
// directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the uploads directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory served under URLPrefix.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes one uploaded file and returns its serving URL. The stored
// name is random; only the extension of the original name is kept.
func (s *FileStore) Save(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("writing upload file: %w", err)
	}
	return URLPrefix + "/" + name, nil
}
