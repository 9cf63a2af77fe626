package imagehost_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"katalog/internal/imagehost"
	"katalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalHostUpload(t *testing.T) {
	dir := t.TempDir()
	host, err := imagehost.NewLocalHost(dir, "http://localhost:5000/")
	require.NoError(t, err)

	data := []byte("\x89PNG\r\n\x1a\nfake")
	url, err := host.Upload(context.Background(), "products", models.ImageUpload{
		Filename: "Photo.PNG",
		MIMEType: "image/png",
		Data:     data,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:5000/uploads/products/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	name := filepath.Base(url)
	stored, err := os.ReadFile(filepath.Join(dir, "products", name))
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestLocalHostKeepsFolderInsideDir(t *testing.T) {
	dir := t.TempDir()
	host, err := imagehost.NewLocalHost(dir, "http://cdn.test")
	require.NoError(t, err)

	url, err := host.Upload(context.Background(), "../../escape", models.ImageUpload{Filename: "a.jpg", Data: []byte{1}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://cdn.test/uploads/escape/"), url)

	entries, err := os.ReadDir(filepath.Join(dir, "escape"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalHostHonoursCancelledContext(t *testing.T) {
	host, err := imagehost.NewLocalHost(t.TempDir(), "http://cdn.test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = host.Upload(ctx, "products", models.ImageUpload{Filename: "a.jpg", Data: []byte{1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewCloudinaryHostRequiresCredentials(t *testing.T) {
	_, err := imagehost.NewCloudinaryHost(imagehost.CloudinaryConfig{CloudName: "demo"})
	assert.Error(t, err)

	host, err := imagehost.NewCloudinaryHost(imagehost.CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "secret"})
	require.NoError(t, err)
	assert.NotNil(t, host)
}
