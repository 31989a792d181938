package storage

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// StorageError is a fatal image persistence failure (disk full, permissions).
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("image storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ImageStore persists captured images under a per-owner directory. File names
// derive from the capture timestamp, unique within the owner's namespace.
type ImageStore struct {
	baseDir string
	now     func() time.Time
}

func NewImageStore(baseDir string) *ImageStore {
	return &ImageStore{
		baseDir: baseDir,
		now:     time.Now,
	}
}

// Save writes the image and returns its stable path. The owner directory is
// created if absent. No side effects beyond the filesystem.
func (s *ImageStore) Save(ownerId string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, ownerId)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	name := fmt.Sprintf("discovery_%d.jpg", s.now().UnixNano())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &StorageError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// Read loads a stored image back, for display or re-submission to the
// identification boundary.
func (s *ImageStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StorageError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// DetectMediaType sniffs the content type of raw image bytes.
func DetectMediaType(data []byte) string {
	return http.DetectContentType(data)
}
