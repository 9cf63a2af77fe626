package imagehost

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"katalog/internal/models"

	"github.com/google/uuid"
)

// LocalPrefix is the URL path under which LocalHost files are served.
const LocalPrefix = "/uploads"

// LocalHost writes images to a directory that the server exposes under
// LocalPrefix. It stands in for a CDN during development.
type LocalHost struct {
	dir     string
	baseURL string
}

// NewLocalHost creates the upload directory if needed.
func NewLocalHost(dir, baseURL string) (*LocalHost, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory must not be empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid public base URL %q: %w", baseURL, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalHost{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory files are written to.
func (h *LocalHost) Dir() string { return h.dir }

// Upload writes the image under a random name and returns its URL.
func (h *LocalHost) Upload(ctx context.Context, folder string, img models.ImageUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	folder = strings.Trim(filepath.Clean("/"+folder), "/")

	ext := strings.ToLower(filepath.Ext(img.Filename))
	name := uuid.New().String() + ext

	target := filepath.Join(h.dir, folder)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", folder, err)
	}
	if err := os.WriteFile(filepath.Join(target, name), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", img.Filename, err)
	}
	return h.baseURL + path.Join(LocalPrefix, folder, name), nil
}
