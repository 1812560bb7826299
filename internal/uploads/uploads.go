// Package uploads stores item photos on disk, outside the entity store, and
// hands back the URL paths that go into Item.Images.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrUnsupportedImage is returned for uploads that are not JPEG or PNG.
var ErrUnsupportedImage = errors.New("unsupported image")

// ErrTooLarge is returned for photos over MaxFileSize.
var ErrTooLarge = errors.New("image too large")

// MaxFiles is the most photos accepted in one request.
const MaxFiles = 5

// MaxFileSize bounds a single photo before processing.
const MaxFileSize = 8 << 20

// Dir writes processed photos into a directory served under URLPrefix.
type Dir struct {
	Root      string
	URLPrefix string
}

// NewDir creates root if needed.
func NewDir(root, urlPrefix string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Dir{Root: root, URLPrefix: urlPrefix}, nil
}

// Save normalizes one photo, writes it under a random name and returns its URL path.
func (d *Dir) Save(r io.Reader) (string, error) {
	data, err := normalize(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", err
	}

	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(d.Root, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return path.Join(d.URLPrefix, name), nil
}

// Owns reports whether urlPath names a file under the upload dir.
func (d *Dir) Owns(urlPath string) bool {
	dir, name := path.Split(urlPath)
	return name != "" && path.Clean(dir) == path.Clean(d.URLPrefix)
}

// Remove deletes a previously saved photo by URL path. Paths outside the
// upload dir are ignored.
func (d *Dir) Remove(urlPath string) error {
	if !d.Owns(urlPath) {
		return nil
	}
	name := path.Base(urlPath)
	if err := os.Remove(filepath.Join(d.Root, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}
