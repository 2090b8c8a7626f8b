package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores photo binaries under a local directory and serves them from a
// base URL (typically /photos/ on the API host). It sits behind the
// domain.ObjectStore port so a bucket-backed store can replace it without
// touching the photo service.
type Disk struct {
	root    string
	baseURL string
}

func NewDisk(root, baseURL string) *Disk {
	return &Disk{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *Disk) Put(_ context.Context, path string, _ string, data []byte) (string, error) {
	path = filepath.ToSlash(filepath.Clean(path))
	if path == "." || strings.HasPrefix(path, "..") || strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("invalid object path %q", path)
	}
	full := filepath.Join(d.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return d.baseURL + "/" + path, nil
}

// Root is the directory to expose via a static file handler.
func (d *Disk) Root() string { return d.root }
